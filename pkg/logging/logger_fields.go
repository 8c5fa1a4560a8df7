package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Attack-path field helpers

func Component(name string) Field {
	return String("component", name)
}

func Operation(op string) Field {
	return String("operation", op)
}

func NodeID(id string) Field {
	return String("node_id", id)
}

func Target(id string) Field {
	return String("target", id)
}

func EntryPoint(id string) Field {
	return String("entry_point", id)
}

// Algorithm takes the algorithm name so this package stays a leaf
func Algorithm(name string) Field {
	return String("algorithm", name)
}

func Hops(n int) Field {
	return Int("max_hops", n)
}

func K(n int) Field {
	return Int("k", n)
}

func Count(n int) Field {
	return Int("count", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Snapshot(id string) Field {
	return String("snapshot", id)
}

func Path(nodes []string) Field {
	return Any("path", nodes)
}
