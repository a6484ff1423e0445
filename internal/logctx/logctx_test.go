package logctx

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/eunmann/sas7bdat/pkg/logging"
	"github.com/rs/zerolog"
)

func TestFromContextFallsBack(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(zerolog.New(&buf).With().Str("global", "yes").Logger())
	defer logging.Init(false, false)

	//nolint:staticcheck // nil context is part of the contract
	for _, ctx := range []context.Context{nil, context.Background()} {
		buf.Reset()
		log := FromContext(ctx)
		log.Info().Msg("x")
		if !strings.Contains(buf.String(), `"global":"yes"`) {
			t.Errorf("fallback logger not used: %s", buf.String())
		}
	}
}

func TestWithLoggerNilContext(t *testing.T) {
	var buf bytes.Buffer
	//nolint:staticcheck // nil context is part of the contract
	ctx := WithLogger(nil, zerolog.New(&buf))
	if ctx == nil {
		t.Fatal("WithLogger(nil) returned nil context")
	}
	log := FromContext(ctx)
	log.Info().Msg("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("context logger not used: %s", buf.String())
	}
}

func TestChainedFields(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), zerolog.New(&buf))
	ctx = WithJob(ctx, 3)
	ctx = WithFile(ctx, "data/a.sas7bdat")
	ctx = WithStr(ctx, "format", "csv")

	log := FromContext(ctx)
	log.Info().Msg("converted")
	out := buf.String()
	for _, want := range []string{`"job":3`, `"file":"data/a.sas7bdat"`, `"format":"csv"`} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in %s", want, out)
		}
	}
}
