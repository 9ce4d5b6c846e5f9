package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogFile       string `yaml:"log"`
	DataDir       string `yaml:"data_dir"`
	StateDB       string `yaml:"state_db"`
	ChromaAddr    string `yaml:"chroma_addr"`
	Collection    string `yaml:"collection"`
	ChunkSize     int    `yaml:"chunk_size"`
	ChunkOverlap  int    `yaml:"chunk_overlap"`
	RequestSize   int    `yaml:"request_size"`
	Results       int    `yaml:"results"`
	ExcerptLen    int    `yaml:"excerpt_len"`
	MergeEventsMs int    `yaml:"write_debounce_ms"`
	ServerAddr    string `yaml:"server_addr"`
	OpenAI        *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"open_ai"`
	Gemini *struct {
		Model  string `yaml:"model"`
		ApiKey string `yaml:"api_key"`
	} `yaml:"gemini"`
}

func readConfig(cfgPath string) (*Config, error) {
	cfgFile, err := os.Open(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("unable to open config file: %w", err)
	}
	defer cfgFile.Close()

	cfg := &Config{}
	dec := yaml.NewDecoder(cfgFile)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LogFile == "" {
		c.LogFile = "normrag.log"
	}
	if c.StateDB == "" {
		c.StateDB = "normrag.db"
	}
	if c.ChromaAddr == "" {
		c.ChromaAddr = "http://localhost:8000"
	}
	if c.Collection == "" {
		c.Collection = "iso_hr_knowledge_base"
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap == 0 {
		c.ChunkOverlap = 250
	}
	if c.Results == 0 {
		c.Results = 5
	}
	if c.ExcerptLen == 0 {
		c.ExcerptLen = 200
	}
	if c.MergeEventsMs == 0 {
		c.MergeEventsMs = 500
	}
	if c.ServerAddr == "" {
		c.ServerAddr = "localhost:8081"
	}
}

func (c *Config) validate() error {
	if c.ChunkSize <= 0 {
		return errors.New("chunk_size must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return errors.New("chunk_overlap must be non-negative and smaller than chunk_size")
	}
	if c.DataDir == "" {
		return errors.New("data_dir must be set")
	}

	return nil
}
