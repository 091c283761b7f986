package common

// --------------------------------------------------------------------------
// Message Types
// --------------------------------------------------------------------------

type MessageType string

const (
	MsgTError MessageType = "ERR"

	MsgTSetAdd         MessageType = "SADD"
	MsgTSetRemove      MessageType = "SREM"
	MsgTSetMembers     MessageType = "SMEMBERS"
	MsgTSetIsMember    MessageType = "SISMEMBER"
	MsgTSetCardinality MessageType = "SCARD"
	MsgTKeysMatching   MessageType = "KEYS"
	MsgTDelete         MessageType = "DEL"
	MsgTHashSetAll     MessageType = "HSETALL"
	MsgTHashGetAll     MessageType = "HGETALL"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type" msgpack:"t"`

	// General fields
	Key    string `json:"key,omitempty" msgpack:"k,omitempty"`    // Set/hash key, or scan pattern for KeysMatching
	Member string `json:"member,omitempty" msgpack:"m,omitempty"` // Used for: SetAdd, SetRemove, SetIsMember

	// Bulk fields
	Keys   []string          `json:"keys,omitempty" msgpack:"ks,omitempty"`   // Delete request, SetMembers/KeysMatching responses
	Fields map[string][]byte `json:"fields,omitempty" msgpack:"f,omitempty"`  // HashSetAll request, HashGetAll response
	Count  int64             `json:"count,omitempty" msgpack:"c,omitempty"`   // SetCardinality response

	// Response only fields
	Ok  bool   `json:"ok,omitempty" msgpack:"ok,omitempty"` // SetIsMember response
	Err string `json:"err,omitempty" msgpack:"e,omitempty"` // Empty if no error, otherwise contains the error message
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewSetAddRequest creates a new SetAdd request
func NewSetAddRequest(key, member string) *Message {
	return &Message{
		MsgType: MsgTSetAdd,
		Key:     key,
		Member:  member,
	}
}

// NewSetRemoveRequest creates a new SetRemove request
func NewSetRemoveRequest(key, member string) *Message {
	return &Message{
		MsgType: MsgTSetRemove,
		Key:     key,
		Member:  member,
	}
}

// NewSetMembersRequest creates a new SetMembers request
func NewSetMembersRequest(key string) *Message {
	return &Message{
		MsgType: MsgTSetMembers,
		Key:     key,
	}
}

// NewSetIsMemberRequest creates a new SetIsMember request
func NewSetIsMemberRequest(key, member string) *Message {
	return &Message{
		MsgType: MsgTSetIsMember,
		Key:     key,
		Member:  member,
	}
}

// NewSetCardinalityRequest creates a new SetCardinality request
func NewSetCardinalityRequest(key string) *Message {
	return &Message{
		MsgType: MsgTSetCardinality,
		Key:     key,
	}
}

// NewKeysMatchingRequest creates a new KeysMatching request. The pattern
// travels in the Key field.
func NewKeysMatchingRequest(pattern string) *Message {
	return &Message{
		MsgType: MsgTKeysMatching,
		Key:     pattern,
	}
}

// NewDeleteRequest creates a new Delete request
func NewDeleteRequest(keys ...string) *Message {
	return &Message{
		MsgType: MsgTDelete,
		Keys:    keys,
	}
}

// NewHashSetAllRequest creates a new HashSetAll request
func NewHashSetAllRequest(key string, fields map[string][]byte) *Message {
	return &Message{
		MsgType: MsgTHashSetAll,
		Key:     key,
		Fields:  fields,
	}
}

// NewHashGetAllRequest creates a new HashGetAll request
func NewHashGetAllRequest(key string) *Message {
	return &Message{
		MsgType: MsgTHashGetAll,
		Key:     key,
	}
}

// NewAckResponse creates a response carrying only success or failure for
// the given request type.
func NewAckResponse(msgType MessageType, err error) *Message {
	msg := &Message{
		MsgType: msgType,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewKeysResponse creates a response carrying a list of keys or members
func NewKeysResponse(msgType MessageType, keys []string, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Keys:    keys,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewBoolResponse creates a response carrying a boolean result
func NewBoolResponse(msgType MessageType, ok bool, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Ok:      ok,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewCountResponse creates a response carrying a cardinality
func NewCountResponse(msgType MessageType, count int64, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Count:   count,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewFieldsResponse creates a response carrying hash fields
func NewFieldsResponse(msgType MessageType, fields map[string][]byte, err error) *Message {
	msg := &Message{
		MsgType: msgType,
		Fields:  fields,
	}
	if err != nil {
		msg.Err = err.Error()
	}
	return msg
}

// NewErrorResponse creates a generic error response
func NewErrorResponse(errMsg string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     errMsg,
	}
}
