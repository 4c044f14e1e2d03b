package crm

import (
	"reflect"
	"time"
	"unsafe"

	jsoniter "github.com/json-iterator/go"
)

// Serializer marshals CRM payloads with an explicit timestamp format.
// The format is injected from config and registered on a private jsoniter
// instance, never on process-wide serializer state.
type Serializer struct {
	api jsoniter.API
}

// NewSerializer builds a serializer that renders every time.Time field
// in UTC using the given layout.
func NewSerializer(timeFormat string) *Serializer {
	api := jsoniter.Config{
		EscapeHTML:             true,
		SortMapKeys:            true,
		ValidateJsonRawMessage: true,
	}.Froze()
	api.RegisterExtension(&timeFormatExtension{format: timeFormat})
	return &Serializer{api: api}
}

func (s *Serializer) Marshal(v interface{}) ([]byte, error) {
	return s.api.Marshal(v)
}

func (s *Serializer) Unmarshal(data []byte, v interface{}) error {
	return s.api.Unmarshal(data, v)
}

type timeFormatExtension struct {
	jsoniter.DummyExtension
	format string
}

func (e *timeFormatExtension) UpdateStructDescriptor(desc *jsoniter.StructDescriptor) {
	timeType := reflect.TypeOf(time.Time{})
	for _, binding := range desc.Fields {
		if binding.Field.Type().Type1() == timeType {
			binding.Encoder = &timeEncoder{format: e.format}
		}
	}
}

type timeEncoder struct {
	format string
}

func (e *timeEncoder) IsEmpty(ptr unsafe.Pointer) bool {
	return (*time.Time)(ptr).IsZero()
}

func (e *timeEncoder) Encode(ptr unsafe.Pointer, stream *jsoniter.Stream) {
	t := *(*time.Time)(ptr)
	stream.WriteString(t.UTC().Format(e.format))
}
