package serializer

import (
	"reflect"
	"testing"

	"github.com/keydex/keydex/rpc/common"
)

// testSerializers is a map of serializer name to factory function
var testSerializers = map[string]func() IRPCSerializer{
	"JSON":       NewJSONSerializer,
	"GOB":        NewGOBSerializer,
	"Msgpack":    NewMsgpackSerializer,
	"Msgpack+S2": func() IRPCSerializer { return NewCompressedSerializer(NewMsgpackSerializer()) },
	"JSON+S2":    func() IRPCSerializer { return NewCompressedSerializer(NewJSONSerializer()) },
}

// testMessages creates a set of test messages with different fields filled
func testMessages() []common.Message {
	return []common.Message{
		// SetAdd request
		{
			MsgType: common.MsgTSetAdd,
			Key:     "persons:firstname:Rand",
			Member:  "key-1",
		},

		// KeysMatching response
		{
			MsgType: common.MsgTKeysMatching,
			Keys:    []string{"persons:firstname:rand", "persons:firstname:mat"},
		},

		// SetIsMember response
		{
			MsgType: common.MsgTSetIsMember,
			Key:     "persons",
			Member:  "key-1",
			Ok:      true,
		},

		// SetCardinality response
		{
			MsgType: common.MsgTSetCardinality,
			Key:     "persons",
			Count:   42,
		},

		// HashSetAll request
		{
			MsgType: common.MsgTHashSetAll,
			Key:     "persons:key-1",
			Fields: map[string][]byte{
				"firstname":    []byte("Rand"),
				"address.city": []byte("Caemlyn"),
			},
		},

		// Error response
		{
			MsgType: common.MsgTError,
			Err:     "test error message",
		},
	}
}

// TestSerializerRoundTrip tests that messages can be serialized and deserialized correctly
func TestSerializerRoundTrip(t *testing.T) {
	messages := testMessages()

	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()

			for _, msg := range messages {
				b, err := s.Serialize(msg)
				if err != nil {
					t.Fatalf("failed to serialize %v: %v", msg.MsgType, err)
				}

				var decoded common.Message
				if err := s.Deserialize(b, &decoded); err != nil {
					t.Fatalf("failed to deserialize %v: %v", msg.MsgType, err)
				}

				if !reflect.DeepEqual(msg, decoded) {
					t.Errorf("round trip mismatch for %v:\nsent:     %+v\nreceived: %+v", msg.MsgType, msg, decoded)
				}
			}
		})
	}
}

// TestSerializerGarbageInput tests that deserializing garbage fails instead of panicking
func TestSerializerGarbageInput(t *testing.T) {
	for name, factory := range testSerializers {
		t.Run(name, func(t *testing.T) {
			s := factory()
			var msg common.Message
			if err := s.Deserialize([]byte("\x00garbage\xff"), &msg); err == nil {
				t.Errorf("expected error deserializing garbage input")
			}
		})
	}
}
