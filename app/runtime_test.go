package app

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/config"
	"github.com/etas-contrib/eclipse-sdv-blueprints-service-to-signal/testutil"
)

type RuntimeMetricsSuite struct {
	suite.Suite
	logs     *testutil.LogRecorder
	runtimes []*Runtime
}

func (s *RuntimeMetricsSuite) SetupTest() {
	s.logs = testutil.NewLogRecorder()
	s.runtimes = nil
}

func (s *RuntimeMetricsSuite) TearDownTest() {
	for _, rt := range s.runtimes {
		rt.Close()
	}
}

func (s *RuntimeMetricsSuite) newRuntime(name string, cfg *config.Config, opts ...RuntimeOption) *Runtime {
	rt, err := NewRuntime(name, cfg, s.logs.Logger(), opts...)
	s.Require().NoError(err)
	s.runtimes = append(s.runtimes, rt)
	return rt
}

// freePort reserves an ephemeral port and releases it for the server under test.
func (s *RuntimeMetricsSuite) freePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	s.Require().NoError(err)
	port := l.Addr().(*net.TCPAddr).Port
	s.Require().NoError(l.Close())
	return port
}

func (s *RuntimeMetricsSuite) TestDefaultConfigProcessesShareAHost() {
	servicePort, hornPort := s.freePort(), s.freePort()

	service := s.newRuntime("horn-service", config.Default(), WithDefaultMetricsPort(servicePort))
	horn := s.newRuntime("software-horn", config.Default(), WithDefaultMetricsPort(hornPort))
	client := s.newRuntime("horn-client", config.Default())

	for _, rt := range []*Runtime{service, horn, client} {
		s.Require().NoError(rt.startMetrics())
	}

	s.Equal(servicePort, service.MetricsPort())
	s.Equal(hornPort, horn.MetricsPort())
	s.Zero(client.MetricsPort())
	s.Nil(client.server, "horn-client serves no metrics by default")

	for _, port := range []int{servicePort, hornPort} {
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + "/metrics")
		s.Require().NoError(err)
		_, _ = io.Copy(io.Discard, resp.Body)
		s.Require().NoError(resp.Body.Close())
		s.Equal(http.StatusOK, resp.StatusCode)
	}
	s.True(s.logs.Has(slog.LevelInfo, "Metrics server started"))
}

func (s *RuntimeMetricsSuite) TestSecondBindOfAPortFails() {
	port := s.freePort()

	first := s.newRuntime("horn-service", config.Default(), WithDefaultMetricsPort(port))
	second := s.newRuntime("software-horn", config.Default(), WithDefaultMetricsPort(port))

	s.Require().NoError(first.startMetrics())
	err := second.startMetrics()
	s.Require().Error(err)
	s.Contains(err.Error(), "start metrics server")
	s.Nil(second.server)
}

func (s *RuntimeMetricsSuite) TestConfiguredPortWins() {
	cfg := config.Default()
	cfg.Metrics.Port = 9191
	s.Equal(9191, s.newRuntime("software-horn", cfg, WithDefaultMetricsPort(9091)).MetricsPort())

	cfg = config.Default()
	cfg.Metrics.Port = -1
	rt := s.newRuntime("horn-service", cfg, WithDefaultMetricsPort(9090))
	s.Zero(rt.MetricsPort())
	s.Require().NoError(rt.startMetrics())
	s.Nil(rt.server)
}

func TestRuntimeMetricsSuite(t *testing.T) {
	suite.Run(t, new(RuntimeMetricsSuite))
}
