package logger

import (
	"log/slog"
	"os"
	"strings"
)

type Logger struct {
	*slog.Logger
}

func New(logLevel string) *Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(logLevel),
		AddSource: logLevel == "debug",
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)

	return &Logger{
		Logger: slog.New(handler),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger: l.Logger.With("component", component),
	}
}

func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{
		Logger: l.Logger.With(fields...),
	}
}

// RouteAdded logs a route insertion (network or host route, or a
// connected route synthesized by an interface-up notification).
func (l *Logger) RouteAdded(kind, network, gateway string, iface int, metric uint32) {
	l.Info("route added",
		slog.String("kind", kind),
		slog.String("network", network),
		slog.String("gateway", gateway),
		slog.Int("interface", iface),
		slog.Any("metric", metric))
}

// RouteRemoved logs a route removal, whether explicit (RemoveRoute) or
// implicit (interface-down purge, address removal).
func (l *Logger) RouteRemoved(reason, network string, iface int) {
	l.Info("route removed",
		slog.String("reason", reason),
		slog.String("network", network),
		slog.Int("interface", iface))
}

// LookupMiss logs a unicast or multicast lookup that found no route.
func (l *Logger) LookupMiss(destination string, iface int) {
	l.Debug("lookup miss",
		slog.String("destination", destination),
		slog.Int("interface", iface))
}

// EcmpSelected logs which candidate an ECMP policy picked, for
// reproducing a flow's path outside of the metrics counters.
func (l *Logger) EcmpSelected(policy string, candidateCount, chosen int) {
	l.Debug("ecmp candidate selected",
		slog.String("policy", policy),
		slog.Int("candidates", candidateCount),
		slog.Int("chosen", chosen))
}

// InterfaceTransition logs an interface up/down notification and how
// many connected routes it added or purged.
func (l *Logger) InterfaceTransition(iface int, up bool, routesAffected int) {
	l.Info("interface transition",
		slog.Int("interface", iface),
		slog.Bool("up", up),
		slog.Int("routes_affected", routesAffected))
}
