// Copyright 2015-2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"fmt"
	"io/ioutil"

	"github.com/diffeo/go-fhirhistory/restserver"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v2"
)

// Config holds the daemon settings.  Values come from, in increasing
// order of precedence, the defaults, the YAML file named by --config,
// and command-line flags.
type Config struct {
	// HTTP is the [ip]:port to listen on.
	HTTP string `mapstructure:"http"`

	// Prefix is the URL path the service is mounted at.
	Prefix string `mapstructure:"prefix"`

	// BaseURL is the absolute URL clients use to reach Prefix.
	// If empty, it is derived from each request.
	BaseURL string `mapstructure:"base_url"`

	PageSize       int `mapstructure:"page_size"`
	MaxPageSize    int `mapstructure:"max_page_size"`
	PagingCapacity int `mapstructure:"paging_capacity"`

	LogLevel    string `mapstructure:"log_level"`
	LogRequests bool   `mapstructure:"log_requests"`

	// ResourceTypes lists the types served from the store.
	ResourceTypes []string `mapstructure:"resource_types"`

	// Seed holds records loaded into the store at startup.
	Seed []SeedRecord `mapstructure:"seed"`
}

// SeedRecord is one version of one record to store at startup.
// Listing the same record more than once creates several versions.
type SeedRecord struct {
	ResourceType string                 `mapstructure:"resource_type"`
	ID           string                 `mapstructure:"id"`
	Content      map[string]interface{} `mapstructure:"content"`
}

func defaultConfig() Config {
	return Config{
		HTTP:           ":5980",
		Prefix:         "/",
		PageSize:       restserver.DefaultPageSize,
		MaxPageSize:    restserver.DefaultMaxPageSize,
		PagingCapacity: 100,
		LogLevel:       "info",
		ResourceTypes:  []string{"Patient", "Observation"},
	}
}

func loadConfigYaml(filename string) (map[string]interface{}, error) {
	var result map[string]interface{}
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	if err != nil {
		return nil, err
	}
	return stringKeys(result).(map[string]interface{}), nil
}

// stringKeys converts the map[interface{}]interface{} objects the YAML
// decoder produces into map[string]interface{}, recursively, so they
// can later be encoded as JSON.
func stringKeys(obj interface{}) interface{} {
	switch v := obj.(type) {
	case map[interface{}]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[fmt.Sprint(key)] = stringKeys(value)
		}
		return result
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			result[key] = stringKeys(value)
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, value := range v {
			result[i] = stringKeys(value)
		}
		return result
	default:
		return obj
	}
}

// decode is a helper that uses the mapstructure library to decode a
// string-keyed map into a structure.
func decode(result interface{}, options map[string]interface{}) error {
	config := mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		Result:           result,
	}
	decoder, err := mapstructure.NewDecoder(&config)
	if err == nil {
		err = decoder.Decode(options)
	}
	return err
}

// applyFlags overwrites cfg with every flag given explicitly on the
// command line.
func (cfg *Config) applyFlags(c *cli.Context) {
	if c.IsSet("http") {
		cfg.HTTP = c.String("http")
	}
	if c.IsSet("prefix") {
		cfg.Prefix = c.String("prefix")
	}
	if c.IsSet("base-url") {
		cfg.BaseURL = c.String("base-url")
	}
	if c.IsSet("page-size") {
		cfg.PageSize = c.Int("page-size")
	}
	if c.IsSet("paging-capacity") {
		cfg.PagingCapacity = c.Int("paging-capacity")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-requests") {
		cfg.LogRequests = c.Bool("log-requests")
	}
}

// validate checks values no later stage can recover from.
func (cfg *Config) validate() error {
	if cfg.PagingCapacity < 1 {
		return fmt.Errorf("paging capacity must be positive, not %d", cfg.PagingCapacity)
	}
	if cfg.PageSize < 1 {
		return fmt.Errorf("page size must be positive, not %d", cfg.PageSize)
	}
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		return err
	}
	for _, seed := range cfg.Seed {
		if seed.ResourceType == "" || seed.ID == "" {
			return fmt.Errorf("seed record needs resource_type and id")
		}
	}
	return nil
}

// loadConfig builds the complete configuration for a run.
func loadConfig(c *cli.Context) (Config, error) {
	cfg := defaultConfig()
	if filename := c.String("config"); filename != "" {
		options, err := loadConfigYaml(filename)
		if err != nil {
			return cfg, err
		}
		if err = decode(&cfg, options); err != nil {
			return cfg, err
		}
	}
	cfg.applyFlags(c)
	return cfg, cfg.validate()
}
