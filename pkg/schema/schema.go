package schema

import (
	"context"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

// A SchemaIdentifier resolves the registry ID for a schema text
// under the subject, registering it when needed.
type SchemaIdentifier interface {
	DetermineID(ctx context.Context, subject, schemaText string) (int, error)
}

type schemaCreater interface {
	CreateSchema(
		ctx context.Context, subject string, s sr.Schema,
	) (sr.SubjectSchema, error)
}

// A RegistryIdentifier registers Avro schemas in the schema registry.
type RegistryIdentifier struct {
	cl schemaCreater
}

func NewRegistryIdentifier(cl schemaCreater) RegistryIdentifier {
	return RegistryIdentifier{cl}
}

func (r RegistryIdentifier) DetermineID(
	ctx context.Context, subject, schemaText string,
) (int, error) {
	ss, err := r.cl.CreateSchema(
		ctx, subject, sr.Schema{Type: sr.TypeAvro, Schema: schemaText},
	)
	if err != nil {
		return 0, err
	}
	return ss.ID, nil
}

func AvroEncodeFn(s avro.Schema) func(v any) ([]byte, error) {
	return func(v any) ([]byte, error) {
		return avro.Marshal(s, v)
	}
}

func AvroDecodeFn(s avro.Schema) func([]byte, any) error {
	return func(data []byte, v any) error {
		return avro.Unmarshal(s, data, v)
	}
}
