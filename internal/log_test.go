package internal

import "testing"

func TestParseLogLevel(t *testing.T) {
	for _, name := range []string{"ERROR", "WARN", "INFO", "DEBUG", "TRACE"} {
		level, ok := ParseLogLevel(name)
		if !ok || level.String() != name {
			t.Errorf("ParseLogLevel(%q) = %v, %v", name, level, ok)
		}
	}
	if level, ok := ParseLogLevel(" debug "); !ok || level != LogLevelDebug {
		t.Errorf("lower case level not accepted")
	}
	if _, ok := ParseLogLevel("LOUD"); ok {
		t.Errorf("unknown level accepted")
	}
}

func TestLoggerLevelGate(t *testing.T) {
	l := NewLogger(LogLevelWarn)
	if l.GetLevel() != LogLevelWarn {
		t.Errorf("level not kept")
	}
}
