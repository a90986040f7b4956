package logging

import "time"

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Int64(key string, value int64) Field {
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

// Domain field helpers
func Component(name string) Field {
	return String("component", name)
}

func City(city string) Field {
	return String("city", city)
}

func Scenario(name string) Field {
	return String("scenario", name)
}

func Severity(s float64) Field {
	return Float64("severity", s)
}

func Seed(seed int64) Field {
	return Int64("seed", seed)
}

func Pairs(n int) Field {
	return Int("pairs", n)
}

func RemovedEdges(n int) Field {
	return Int("removed_edges", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}
