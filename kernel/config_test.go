package kernel_test

import (
	"testing"

	"github.com/dargueta/tydos/errors"
	"github.com/dargueta/tydos/file_systems/tyfs"
	"github.com/dargueta/tydos/kernel"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := kernel.DefaultConfig()
	assert.NoError(t, cfg.Validate())
	assert.EqualValues(t, 0x7c00, cfg.BootStart)
	assert.EqualValues(t, 0xfe00, cfg.ProgramBase)
	assert.EqualValues(t, 1<<20, cfg.MemorySize)
	assert.Equal(t, "fd1440", cfg.Drive)
	assert.True(t, cfg.AcceptsSignature(tyfs.Header{Signature: tyfs.DefaultSignature}))
	assert.False(t, cfg.AcceptsSignature(tyfs.Header{}))
}

func TestConfigValidate(t *testing.T) {
	cfg := kernel.DefaultConfig()
	cfg.ScratchSectors = 256
	assert.ErrorIs(t, cfg.Validate(), errors.ErrArgumentOutOfRange)

	cfg = kernel.DefaultConfig()
	cfg.MemorySize = 0x7c00
	assert.ErrorIs(t, cfg.Validate(), errors.ErrArgumentOutOfRange)

	cfg = kernel.DefaultConfig()
	cfg.Drive = "fd9999"
	assert.Error(t, cfg.Validate())
}
