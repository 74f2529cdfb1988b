package server

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"mcp-mini/internal/weather"
)

// ToolName identifies one of the built-in tools.
type ToolName string

const (
	ToolGetDatetime ToolName = "get_datetime"
	ToolPing        ToolName = "ping"
	ToolGetWeather  ToolName = "get_weather"
)

// toolFunc runs one tool. A non-nil error becomes an ok=false envelope.
type toolFunc func(ctx context.Context, args Arguments) (any, error)

func (s *Server) registerToolHandlers() {
	s.tools = map[ToolName]toolFunc{
		ToolGetDatetime: s.toolDatetime,
		ToolPing:        s.toolPing,
		ToolGetWeather:  s.toolWeather,
	}
}

// Tools lists the registered tool names, sorted.
func (s *Server) Tools() []string {
	out := make([]string, 0, len(s.tools))
	for name := range s.tools {
		out = append(out, string(name))
	}
	sort.Strings(out)
	return out
}

// invoke runs the named tool and normalizes every outcome, including a
// panic, into an Envelope.
func (s *Server) invoke(ctx context.Context, name ToolName, args Arguments) (env Envelope) {
	fn, ok := s.tools[name]
	if !ok {
		return failure(fmt.Sprintf("Unknown tool '%s'", name))
	}
	defer func() {
		if r := recover(); r != nil {
			env = failure(fmt.Sprint(r))
		}
	}()
	result, err := fn(ctx, args)
	if err != nil {
		return failure(errorMessage(err))
	}
	return success(result)
}

func errorMessage(err error) string {
	if errors.Is(err, weather.ErrUpstream) {
		return "HTTP error: " + err.Error()
	}
	return err.Error()
}

func (s *Server) toolDatetime(_ context.Context, _ Arguments) (any, error) {
	return formatDatetime(s.now().UTC()), nil
}

func (s *Server) toolPing(_ context.Context, _ Arguments) (any, error) {
	return "pong", nil
}

func (s *Server) toolWeather(ctx context.Context, args Arguments) (any, error) {
	if args.Err != nil {
		return nil, args.Err
	}
	return s.weather.Lookup(ctx, weather.ResolveQuery(args.Values))
}

// formatDatetime renders t with microsecond precision; the fraction is
// dropped when it is zero.
func formatDatetime(t time.Time) DatetimeResult {
	t = t.Truncate(time.Microsecond)
	layout := "2006-01-02T15:04:05"
	if t.Nanosecond() != 0 {
		layout += ".000000"
	}
	return DatetimeResult{
		ISOUTC:   t.Format(layout) + "Z",
		HumanUTC: t.Format("2006-01-02 15:04:05") + " (UTC)",
	}
}
