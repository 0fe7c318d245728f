package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// File replays post events from a JSON-Lines file, one event per
// line. It exists for backfill and for exercising the engine without
// a live feed; Poll reads the whole file, so it is meant for one-shot
// ingestion rather than the scheduler loop.
type File struct {
	path string
}

// NewFile creates a file replay source.
func NewFile(path string) *File {
	return &File{path: path}
}

func (f *File) Name() string { return "file" }

func (f *File) Poll(ctx context.Context) ([]PostEvent, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("open events file %s: %w", f.path, err)
	}
	defer fh.Close()

	var events []PostEvent
	sc := bufio.NewScanner(fh)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	line := 0
	for sc.Scan() {
		line++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}

		var ev PostEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			return nil, fmt.Errorf("decode event at %s:%d: %w", f.path, line, err)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read events file %s: %w", f.path, err)
	}

	return events, nil
}
