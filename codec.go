package tidyduck

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/format"
	"github.com/pelletier/go-toml/v2"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Codec defines the serialization interface for specs and results.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// jsonCodec implements Codec using standard JSON encoding.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// yamlCodec implements Codec using YAML encoding.
type yamlCodec struct{}

func (yamlCodec) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

func (yamlCodec) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// msgpackCodec implements Codec using MessagePack encoding.
// Struct fields are named by their json tags.
type msgpackCodec struct{}

func (msgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (msgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// tomlCodec implements Codec using TOML encoding.
type tomlCodec struct{}

func (tomlCodec) Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

func (tomlCodec) Unmarshal(data []byte, v any) error {
	return toml.Unmarshal(data, v)
}

// cueCodec implements Codec using CUE. Decoding evaluates the document, so a
// spec may use definitions, references and defaults; the result must be concrete.
type cueCodec struct{}

func (cueCodec) Marshal(v any) ([]byte, error) {
	val := cuecontext.New().Encode(v)
	if err := val.Err(); err != nil {
		return nil, err
	}
	return format.Node(val.Syntax(cue.Final(), cue.Concrete(true)))
}

func (cueCodec) Unmarshal(data []byte, v any) error {
	val := cuecontext.New().CompileBytes(data)
	if err := val.Err(); err != nil {
		return err
	}
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return err
	}
	return val.Decode(v)
}

// Built-in codec instances.
var (
	JSONCodec    Codec = jsonCodec{}
	YAMLCodec    Codec = yamlCodec{}
	MsgPackCodec Codec = msgpackCodec{}
	TOMLCodec    Codec = tomlCodec{}
	CUECodec     Codec = cueCodec{}
)

// CodecByName returns the codec for json, yaml, toml, msgpack or cue.
func CodecByName(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSONCodec, nil
	case "yaml", "yml":
		return YAMLCodec, nil
	case "toml":
		return TOMLCodec, nil
	case "msgpack", "mpk":
		return MsgPackCodec, nil
	case "cue":
		return CUECodec, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}
}

// CodecFor picks a codec from a file extension.
func CodecFor(path string) (Codec, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return nil, fmt.Errorf("%w: %q has no extension", ErrUnknownCodec, path)
	}
	return CodecByName(ext)
}

// DecodeQuerySpec decodes and validates a query spec.
func DecodeQuerySpec(data []byte, codec Codec) (QuerySpec, error) {
	var spec QuerySpec
	if err := codec.Unmarshal(data, &spec); err != nil {
		return QuerySpec{}, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	if err := spec.Validate(); err != nil {
		return QuerySpec{}, err
	}
	return spec, nil
}

// LoadQuerySpec reads a query spec file, choosing the codec by extension.
func LoadQuerySpec(path string) (QuerySpec, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return QuerySpec{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return QuerySpec{}, fmt.Errorf("reading spec: %w", err)
	}
	return DecodeQuerySpec(data, codec)
}
