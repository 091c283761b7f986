package client

import (
	"fmt"

	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/rpc/common"
	"github.com/keydex/keydex/rpc/serializer"
	"github.com/keydex/keydex/rpc/transport"
)

// NewRPCStore creates a kv.Store backed by a remote keydex server. The
// transport is connected before the store is returned.
func NewRPCStore(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (kv.Store, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcStore{
		config:     config,
		transport:  transport,
		serializer: serializer,
	}, nil
}

type rpcStore struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the kv package in interface.go)
// --------------------------------------------------------------------------

func (s *rpcStore) SetAdd(key, member string) error {
	_, err := s.invoke(common.NewSetAddRequest(key, member))
	return err
}

func (s *rpcStore) SetRemove(key, member string) error {
	_, err := s.invoke(common.NewSetRemoveRequest(key, member))
	return err
}

func (s *rpcStore) SetMembers(key string) ([]string, error) {
	resp, err := s.invoke(common.NewSetMembersRequest(key))
	if err != nil {
		return nil, err
	}
	if resp.Keys == nil {
		return []string{}, nil
	}
	return resp.Keys, nil
}

func (s *rpcStore) SetIsMember(key, member string) (bool, error) {
	resp, err := s.invoke(common.NewSetIsMemberRequest(key, member))
	if err != nil {
		return false, err
	}
	return resp.Ok, nil
}

func (s *rpcStore) SetCardinality(key string) (int64, error) {
	resp, err := s.invoke(common.NewSetCardinalityRequest(key))
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}

func (s *rpcStore) KeysMatching(pattern string) ([]string, error) {
	resp, err := s.invoke(common.NewKeysMatchingRequest(pattern))
	if err != nil {
		return nil, err
	}
	if resp.Keys == nil {
		return []string{}, nil
	}
	return resp.Keys, nil
}

func (s *rpcStore) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.invoke(common.NewDeleteRequest(keys...))
	return err
}

func (s *rpcStore) HashSetAll(key string, fields map[string][]byte) error {
	_, err := s.invoke(common.NewHashSetAllRequest(key, fields))
	return err
}

func (s *rpcStore) HashGetAll(key string) (map[string][]byte, error) {
	resp, err := s.invoke(common.NewHashGetAllRequest(key))
	if err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

func (s *rpcStore) Close() error {
	return s.transport.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// invoke sends one request and validates the response envelope: transport
// errors, error responses and mismatched response types all surface as
// errors to the caller.
func (s *rpcStore) invoke(req *common.Message) (*common.Message, error) {
	reqBytes, err := s.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := s.transport.Send(reqBytes)
	if err != nil {
		return nil, err
	}

	resp := &common.Message{}
	if err := s.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("rpc store: failed to deserialize response: %w", err)
	}

	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, fmt.Errorf("rpc store: %s", resp.Err)
	}
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("rpc store: unexpected message type %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}
