// This tool parses an IFF-family container (RIFF/RIFX, RF64/BW64,
// Wave64) and prints its chunk structure as JSON.
package main

import (
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/ubmu/raff"
)

var errChunkModeUnimplemented = errors.New("chunk mode is not implemented")

func main() {
	err := run(os.Args[1:], os.Stdin, os.Stdout)
	if err == nil {
		return
	}

	if errors.Is(err, errChunkModeUnimplemented) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	log.Fatal(err)
}

// stringList collects repeatable flag values.
type stringList []string

func (s *stringList) String() string {
	return fmt.Sprint(*s)
}

func (s *stringList) Set(value string) error {
	*s = append(*s, value)

	return nil
}

func run(args []string, in io.Reader, out io.Writer) error {
	flags := flag.NewFlagSet("raff", flag.ContinueOnError)

	var ignore stringList

	mode := flags.String("mode", "container", "parsing mode: container or chunk")
	showPayload := flags.Bool("show-payload", false, "include chunk payloads as base64")
	flags.Var(&ignore, "ignore", "chunk identifier to skip (repeatable)")

	err := flags.Parse(args)
	if err != nil {
		return err
	}

	switch *mode {
	case "container":
	case "chunk":
		return errChunkModeUnimplemented
	default:
		return fmt.Errorf("unknown mode %q", *mode)
	}

	var c *raff.Container

	if path := flags.Arg(0); path != "" {
		c, err = raff.Open(path, ignore...)
		if err != nil {
			return err
		}
		defer c.Close()
	} else {
		data, err := io.ReadAll(in)
		if err != nil {
			return fmt.Errorf("failed to read standard input: %w", err)
		}

		c = raff.NewFromBytes(data, ignore...)
	}

	err = c.Parse()
	if err != nil {
		return err
	}

	result, err := json.MarshalIndent(buildReport(c, *showPayload), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize container: %w", err)
	}

	fmt.Fprintln(out, string(result))

	return nil
}

type masterJSON struct {
	Identifier     string `json:"identifier"`
	IdentifierGUID string `json:"identifier_guid,omitempty"`
	Size           uint64 `json:"size"`
	Type           string `json:"type"`
	WaveGUID       string `json:"wave_guid,omitempty"`
}

type ds64JSON struct {
	ChunkSize       uint32 `json:"chunk_size"`
	RiffLowSize     uint32 `json:"riff_low_size"`
	RiffHighSize    uint32 `json:"riff_high_size"`
	DataLowSize     uint32 `json:"data_low_size"`
	DataHighSize    uint32 `json:"data_high_size"`
	SampleLowCount  uint32 `json:"sample_low_count"`
	SampleHighCount uint32 `json:"sample_high_count"`
	TableEntryCount uint32 `json:"table_entry_count"`
}

type chunkJSON struct {
	GUID       string `json:"guid,omitempty"`
	Offset     int64  `json:"offset"`
	Size       uint64 `json:"size"`
	ListType   string `json:"list_type,omitempty"`
	TrueOffset int64  `json:"true_offset,omitempty"`
	TrueSize   uint64 `json:"true_size,omitempty"`
	Payload    string `json:"payload,omitempty"`
}

func buildReport(c *raff.Container, showPayload bool) map[string]any {
	report := make(map[string]any)

	if master := c.Master(); master != nil {
		entry := masterJSON{
			Identifier: master.ID,
			Size:       master.Size,
			Type:       master.Type,
		}

		if master.GUID != uuid.Nil {
			entry.IdentifierGUID = master.GUID.String()
			entry.WaveGUID = master.TypeGUID.String()
		}

		report["master"] = entry
	}

	if ds64 := c.DS64(); ds64 != nil {
		report["ds64"] = ds64JSON{
			ChunkSize:       ds64.ChunkSize,
			RiffLowSize:     ds64.RiffLowSize,
			RiffHighSize:    ds64.RiffHighSize,
			DataLowSize:     ds64.DataLowSize,
			DataHighSize:    ds64.DataHighSize,
			SampleLowCount:  ds64.SampleLowCount,
			SampleHighCount: ds64.SampleHighCount,
			TableEntryCount: ds64.TableEntryCount,
		}
	}

	for _, id := range c.Identifiers() {
		if id == "ds64" {
			continue
		}

		rec := c.Chunk(id)
		if rec == nil {
			// LIST chunks are surfaced under their list type but stored
			// under "LIST".
			rec = c.Chunk("LIST")
			if rec == nil || rec.ListType != id {
				continue
			}
		}

		entry := chunkJSON{
			Offset:     rec.Offset,
			Size:       rec.Size,
			ListType:   rec.ListType,
			TrueOffset: rec.TrueOffset,
			TrueSize:   rec.TrueSize,
		}

		if rec.GUID != uuid.Nil {
			entry.GUID = rec.GUID.String()
		}

		if showPayload {
			entry.Payload = base64.StdEncoding.EncodeToString(rec.Payload)
		}

		report[rec.ID] = entry
	}

	return report
}
