// Package config loads the parameters of an emulated DMA controller from the
// environment and from .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sarchlab/dmaemul/dma"
	"github.com/sarchlab/dmaemul/memory"
)

// Environment variables read by Load.
const (
	EnvName        = "DMAEMUL_NAME"
	EnvNumChannels = "DMAEMUL_NUM_CHANNELS"
	EnvNumRequests = "DMAEMUL_NUM_REQUESTS"
	EnvAddrAlign   = "DMAEMUL_ADDR_ALIGN"
	EnvSizeAlign   = "DMAEMUL_SIZE_ALIGN"
	EnvCopyAlign   = "DMAEMUL_COPY_ALIGN"
	EnvMemorySize  = "DMAEMUL_MEMORY_SIZE"
	EnvMonitorPort = "DMAEMUL_MONITOR_PORT"
	EnvTraceFile   = "DMAEMUL_TRACE_FILE"
	EnvParallelIDs = "DMAEMUL_PARALLEL_IDS"
)

// DefaultEnvFile is read by Load when no file is named and it exists.
const DefaultEnvFile = ".env"

// ErrInvalidConfig is returned when a value cannot be parsed or is out of
// range.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the parameters of a controller and of the tools around it.
type Config struct {
	Name        string
	NumChannels uint32
	NumRequests uint32
	AddrAlign   uint32
	SizeAlign   uint32
	CopyAlign   uint32
	MemorySize  uint64

	// MonitorPort is the port of the monitoring server. Zero picks a random
	// port.
	MonitorPort int

	// TraceFile is the path, without extension, of the SQLite trace. Empty
	// disables tracing.
	TraceFile string

	ParallelIDs bool
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Name:        "DMA",
		NumChannels: 4,
		NumRequests: 1,
		AddrAlign:   1,
		SizeAlign:   1,
		CopyAlign:   1,
		MemorySize:  1 * memory.MB,
	}
}

// Load reads the configuration. Values from the named .env files are
// overridden by the process environment. Without file names, DefaultEnvFile
// is read if it exists.
func Load(filenames ...string) (Config, error) {
	if len(filenames) == 0 {
		if _, err := os.Stat(DefaultEnvFile); err == nil {
			filenames = []string{DefaultEnvFile}
		}
	}

	env := map[string]string{}
	if len(filenames) > 0 {
		fileEnv, err := godotenv.Read(filenames...)
		if err != nil {
			return Config{}, err
		}

		env = fileEnv
	}

	for _, kv := range os.Environ() {
		key, value, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "DMAEMUL_") {
			env[key] = value
		}
	}

	return FromMap(env)
}

// Parse reads the configuration from the content of a .env file.
func Parse(content string) (Config, error) {
	env, err := godotenv.Unmarshal(content)
	if err != nil {
		return Config{}, err
	}

	return FromMap(env)
}

// FromMap builds a configuration from variables. Missing variables keep
// their default values.
func FromMap(env map[string]string) (Config, error) {
	c := Default()
	p := parser{env: env}

	if name, ok := env[EnvName]; ok && name != "" {
		c.Name = name
	}

	p.parseUint32(EnvNumChannels, &c.NumChannels)
	p.parseUint32(EnvNumRequests, &c.NumRequests)
	p.parseUint32(EnvAddrAlign, &c.AddrAlign)
	p.parseUint32(EnvSizeAlign, &c.SizeAlign)
	p.parseUint32(EnvCopyAlign, &c.CopyAlign)
	p.parseSize(EnvMemorySize, &c.MemorySize)
	p.parseInt(EnvMonitorPort, &c.MonitorPort)
	p.parseBool(EnvParallelIDs, &c.ParallelIDs)
	c.TraceFile = env[EnvTraceFile]

	if p.err != nil {
		return Config{}, p.err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Validate checks the values the controller builder would reject.
func (c Config) Validate() error {
	switch {
	case c.NumChannels == 0 || c.NumChannels > dma.MaxChannels:
		return fmt.Errorf("%w: %s must be in [1, %d], got %d",
			ErrInvalidConfig, EnvNumChannels, dma.MaxChannels, c.NumChannels)
	case c.NumRequests == 0:
		return fmt.Errorf("%w: %s must be positive",
			ErrInvalidConfig, EnvNumRequests)
	case c.AddrAlign == 0 || c.SizeAlign == 0 || c.CopyAlign == 0:
		return fmt.Errorf("%w: alignments must be positive", ErrInvalidConfig)
	case c.MemorySize == 0:
		return fmt.Errorf("%w: %s must be positive",
			ErrInvalidConfig, EnvMemorySize)
	case c.MonitorPort < 0 || c.MonitorPort > 65535:
		return fmt.Errorf("%w: %s out of range: %d",
			ErrInvalidConfig, EnvMonitorPort, c.MonitorPort)
	}

	return nil
}

// Apply sets the controller parameters on a builder.
func (c Config) Apply(b dma.Builder) dma.Builder {
	return b.
		WithNumChannels(c.NumChannels).
		WithNumRequests(c.NumRequests).
		WithAddressAlignment(c.AddrAlign).
		WithSizeAlignment(c.SizeAlign).
		WithCopyAlignment(c.CopyAlign)
}

// NewMemory creates the address space the controller copies within.
func (c Config) NewMemory() *memory.Storage {
	return memory.NewStorage(c.MemorySize)
}

type parser struct {
	env map[string]string
	err error
}

func (p *parser) lookup(key string) (string, bool) {
	if p.err != nil {
		return "", false
	}

	v, ok := p.env[key]
	v = strings.TrimSpace(v)

	return v, ok && v != ""
}

func (p *parser) fail(key, value string, err error) {
	p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, value, err)
}

func (p *parser) parseUint32(key string, dst *uint32) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}

	n, err := strconv.ParseUint(v, 0, 32)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = uint32(n)
}

func (p *parser) parseInt(key string, dst *int) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = n
}

func (p *parser) parseBool(key string, dst *bool) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = b
}

var sizeUnits = []struct {
	suffix string
	scale  uint64
}{
	{"GB", memory.GB},
	{"MB", memory.MB},
	{"KB", memory.KB},
	{"B", 1},
}

// parseSize parses a byte count with an optional KB, MB, or GB suffix.
func (p *parser) parseSize(key string, dst *uint64) {
	v, ok := p.lookup(key)
	if !ok {
		return
	}

	s, err := ParseSize(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}

	*dst = s
}

// ParseSize parses a decimal byte count such as "4096", "64KB", or "1 MB".
func ParseSize(v string) (uint64, error) {
	upper := strings.ToUpper(strings.TrimSpace(v))
	scale := uint64(1)

	for _, u := range sizeUnits {
		if strings.HasSuffix(upper, u.suffix) {
			upper = strings.TrimSpace(strings.TrimSuffix(upper, u.suffix))
			scale = u.scale

			break
		}
	}

	n, err := strconv.ParseUint(upper, 10, 64)
	if err != nil {
		return 0, err
	}

	return n * scale, nil
}
