// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"io"
	"mime"
	"reflect"

	"github.com/ugorji/go/codec"
)

// JSONHandle returns the codec handle used for every JSON body.
// Embedded objects decode as map[string]interface{}.
func JSONHandle() *codec.JsonHandle {
	json := &codec.JsonHandle{}
	json.MapType = reflect.TypeOf(map[string]interface{}(nil))
	return json
}

// CanonicalMediaType maps any media type this package can read or
// write to V1JSONMediaType, and returns "" for anything else.
func CanonicalMediaType(mediaType string) string {
	switch mediaType {
	case "text/json", "application/json", "json", V1JSONMediaType:
		return V1JSONMediaType
	}
	return ""
}

// Decode tries to decode a restdata object from a reader, such as an
// HTTP request or response.  out must be a pointer type.
func Decode(contentType string, r io.Reader, out interface{}) error {
	if contentType == "" {
		// RFC 7231 section 3.1.1.5
		// We could also consider http.DetectContentType()
		contentType = "application/octet-stream"
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return err
	}

	switch CanonicalMediaType(mediaType) {
	case V1JSONMediaType:
		decoder := codec.NewDecoder(r, JSONHandle())
		return decoder.Decode(out)
	default:
		return ErrUnsupportedMediaType{Type: mediaType}
	}
}

// Encode writes a restdata object as JSON.
func Encode(w io.Writer, in interface{}) error {
	encoder := codec.NewEncoder(w, JSONHandle())
	return encoder.Encode(in)
}
