package daemon

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priceoracle/oracle/pkg/client/registry"
	"github.com/priceoracle/oracle/pkg/client/rpcclient"
	"github.com/priceoracle/oracle/pkg/client/scheduler"
	"github.com/priceoracle/oracle/pkg/config"
	"github.com/priceoracle/oracle/pkg/program"
)

func validConfig() *config.Config {
	return &config.Config{
		Validator: config.ValidatorConfig{RPCHost: "http://localhost:8899"},
		Local:     config.LocalConfig{ListenPort: 8910},
		Logging:   config.LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestInitBuildsComponentGraph(t *testing.T) {
	d := New(validConfig(), zerolog.Nop())
	require.NoError(t, d.Init())

	assert.NotNil(t, d.reg)
	assert.NotNil(t, d.boot)
	assert.NotNil(t, d.rpc)
	assert.NotNil(t, d.sched)
	assert.NotNil(t, d.local)
	assert.NotNil(t, d.loop)
	assert.Nil(t, d.capture)
}

func TestInitRejectsInvalidConfig(t *testing.T) {
	cfg := validConfig()
	cfg.Validator.RPCHost = ""
	d := New(cfg, zerolog.Nop())

	assert.Error(t, d.Init())
}

func TestInitOpensCaptureSinkWhenEnabled(t *testing.T) {
	cfg := validConfig()
	cfg.Capture.Enabled = true
	cfg.Capture.File = t.TempDir() + "/capture.gz"
	d := New(cfg, zerolog.Nop())

	require.NoError(t, d.Init())
	assert.NotNil(t, d.capture)
	require.NoError(t, d.capture.Close())
}

func TestWSURLFromHTTP(t *testing.T) {
	assert.Equal(t, "ws://localhost:8899", wsURLFromHTTP("http://localhost:8899"))
	assert.Equal(t, "wss://localhost:8899", wsURLFromHTTP("https://localhost:8899"))
}

func TestSchedulerPublisherPublishUpdateErrorsWhenKeyUnregistered(t *testing.T) {
	reg := registry.New(zerolog.Nop())
	rpc := rpcclient.New("http://localhost:8899", "ws://localhost:8899", time.Second, nil, zerolog.Nop())
	p := schedulerPublisher{rpc: rpc, reg: reg}

	err := p.PublishUpdate([32]byte{1}, scheduler.Quote{Price: 100})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no price account registered")
}

func TestSchedulerPublisherPublishUpdateResolvesSymbolFromRegistry(t *testing.T) {
	reg := registry.New(zerolog.Nop())
	key := program.PubKey{1}
	symbol := program.Symbol{'B', 'T', 'C'}
	acct := program.PriceAccount{
		Magic:  program.PC_MAGIC,
		Ver:    program.PC_VERSION,
		Symbol: symbol,
		PType:  program.PC_PTYPE_PRICE,
	}
	data, err := acct.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, reg.UpdatePrice(key, data))

	rpc := rpcclient.New("http://localhost:8899", "ws://localhost:8899", time.Second, nil, zerolog.Nop())
	p := schedulerPublisher{rpc: rpc, reg: reg}

	err = p.PublishUpdate(key, scheduler.Quote{Price: 100})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "no price account registered")
}
