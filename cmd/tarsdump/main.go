// tarsdump decodes a TARS-encoded message and prints it.
//
// Without a schema every field is shown by tag with the type mark it was
// written with. With --schema and --struct the message is decoded against
// a .proto description and fields are shown by name.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/anirudhraja/tarslite"
	"github.com/anirudhraja/tarslite/wire"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	input      string
	output     string
	protoPaths []string
	schemaFile string
	structName string
	indexTags  bool
	maxDepth   int
	verbose    bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	cfg := wire.CurrentConfig()

	flagSet := pflag.NewFlagSet("tarsdump", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVarP(&opts.input, "input", "i", "raw", "input encoding: raw, hex or base64")
	flagSet.StringVarP(&opts.output, "output", "o", "text", "output format: text, json, yaml or cbor")
	flagSet.StringSliceVarP(&opts.protoPaths, "proto-path", "I", []string{"."}, "directories searched for schema files and their imports")
	flagSet.StringVar(&opts.schemaFile, "schema", "", ".proto file describing the message")
	flagSet.StringVar(&opts.structName, "struct", "", "struct to decode the message as (requires --schema)")
	flagSet.BoolVar(&opts.indexTags, "index-tags", cfg.IndexTags, "index struct tags on first lookup")
	flagSet.IntVar(&opts.maxDepth, "max-depth", cfg.MaxDepth, "maximum nesting depth, 0 for unlimited")
	flagSet.BoolVarP(&opts.verbose, "verbose", "v", false, "log decoding steps to stderr")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, "Usage: tarsdump [flags] [file]\n\nReads from stdin when no file is given.\n\nFlags:\n")
		flagSet.PrintDefaults()
	}
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if flagSet.NArg() > 1 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}
	if (opts.schemaFile == "") != (opts.structName == "") {
		return fmt.Errorf("--schema and --struct must be given together")
	}

	cfg.IndexTags = opts.indexTags
	cfg.MaxDepth = opts.maxDepth
	wire.SetConfig(cfg)

	in := stdin
	source := "stdin"
	if flagSet.NArg() == 1 {
		f, err := os.Open(flagSet.Arg(0))
		if err != nil {
			return err
		}
		defer f.Close()
		in, source = f, flagSet.Arg(0)
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", source, err)
	}
	data, err := decodeInput(raw, opts.input)
	if err != nil {
		return err
	}
	logger.Debug("read message", "source", source, "bytes", len(data), "index_tags", cfg.IndexTags, "max_depth", cfg.MaxDepth)

	if opts.schemaFile != "" {
		t := tarslite.NewTarslite(opts.protoPaths)
		if err := t.LoadSchemaFromFile(opts.schemaFile); err != nil {
			return fmt.Errorf("loading schema: %w", err)
		}
		logger.Debug("loaded schema", "file", opts.schemaFile, "structs", len(t.ListStructs()), "enums", len(t.ListEnums()))
		record, err := t.Parse(data, opts.structName)
		if err != nil {
			return err
		}
		if opts.output == "text" {
			return writeRecord(stdout, record)
		}
		return writeStructured(stdout, record, opts.output)
	}

	fields, err := wire.DecodeFields(data)
	if err != nil {
		return err
	}
	logger.Debug("decoded fields", "count", len(fields))
	if opts.output == "text" {
		return writeFields(stdout, fields, 0)
	}
	return writeStructured(stdout, wire.FieldsToMap(fields), opts.output)
}

func decodeInput(raw []byte, encoding string) ([]byte, error) {
	switch encoding {
	case "raw":
		return raw, nil
	case "hex":
		s := strings.Join(strings.Fields(string(raw)), "")
		s = strings.TrimPrefix(s, "0x")
		out, err := hex.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return out, nil
	case "base64":
		out, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(raw)))
		if err != nil {
			return nil, fmt.Errorf("invalid base64 input: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown input encoding %q", encoding)
	}
}

func writeStructured(w io.Writer, v interface{}, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		em, err := cbor.CanonicalEncOptions().EncMode()
		if err != nil {
			return err
		}
		b, err := em.Marshal(v)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeFields prints a schema-less field tree, one entry per line.
func writeFields(w io.Writer, fields []wire.Field, depth int) error {
	for _, f := range fields {
		if err := writeValue(w, fmt.Sprintf("%d", f.Tag), f.Value, depth); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w io.Writer, label string, v wire.Value, depth int) error {
	indent := strings.Repeat("  ", depth)
	switch v := v.(type) {
	case wire.StructValue:
		if _, err := fmt.Fprintf(w, "%s%s: %s {\n", indent, label, v.Mark()); err != nil {
			return err
		}
		if err := writeFields(w, v, depth+1); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "%s}\n", indent)
		return err
	case wire.ListValue:
		if _, err := fmt.Fprintf(w, "%s%s: %s[%d] [\n", indent, label, v.Mark(), len(v)); err != nil {
			return err
		}
		for i, x := range v {
			if err := writeValue(w, fmt.Sprintf("[%d]", i), x, depth+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s]\n", indent)
		return err
	case wire.MapValue:
		if _, err := fmt.Fprintf(w, "%s%s: %s[%d] {\n", indent, label, v.Mark(), len(v)); err != nil {
			return err
		}
		for _, kv := range v {
			key := fmt.Sprintf("%v", wire.ToInterface(kv.Key))
			if s, ok := kv.Key.(wire.StringValue); ok {
				key = fmt.Sprintf("%q", string(s))
			}
			if err := writeValue(w, key, kv.Value, depth+1); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "%s}\n", indent)
		return err
	case wire.StringValue:
		_, err := fmt.Fprintf(w, "%s%s: %s %q\n", indent, label, v.Mark(), string(v))
		return err
	case wire.BytesValue:
		_, err := fmt.Fprintf(w, "%s%s: %s[%d] %s\n", indent, label, v.Mark(), len(v), hex.EncodeToString(v))
		return err
	default:
		_, err := fmt.Fprintf(w, "%s%s: %s %v\n", indent, label, v.Mark(), wire.ToInterface(v))
		return err
	}
}

// writeRecord prints a schema-decoded record. Map keys come out sorted,
// so the YAML form doubles as the text form.
func writeRecord(w io.Writer, record map[string]interface{}) error {
	return writeStructured(w, record, "yaml")
}
