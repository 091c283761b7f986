package server

import (
	"fmt"

	"github.com/keydex/keydex/lib/kv"
	"github.com/keydex/keydex/rpc/common"
)

// IRPCServerAdapter translates wire messages into store operations.
type IRPCServerAdapter interface {
	// Handle processes one request message against the store and returns
	// the response message.
	Handle(req *common.Message, store kv.Store) *common.Message
}

// NewStoreServerAdapter creates the adapter serving the kv.Store operations.
func NewStoreServerAdapter() IRPCServerAdapter {
	return &storeServerAdapterImpl{}
}

type storeServerAdapterImpl struct{}

func (adapter *storeServerAdapterImpl) Handle(req *common.Message, store kv.Store) *common.Message {
	// Check for nil store
	if store == nil {
		return common.NewErrorResponse("handler: store is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTSetAdd:
		err := store.SetAdd(req.Key, req.Member)
		return common.NewAckResponse(req.MsgType, err)
	case common.MsgTSetRemove:
		err := store.SetRemove(req.Key, req.Member)
		return common.NewAckResponse(req.MsgType, err)
	case common.MsgTSetMembers:
		members, err := store.SetMembers(req.Key)
		return common.NewKeysResponse(req.MsgType, members, err)
	case common.MsgTSetIsMember:
		ok, err := store.SetIsMember(req.Key, req.Member)
		return common.NewBoolResponse(req.MsgType, ok, err)
	case common.MsgTSetCardinality:
		count, err := store.SetCardinality(req.Key)
		return common.NewCountResponse(req.MsgType, count, err)
	case common.MsgTKeysMatching:
		keys, err := store.KeysMatching(req.Key)
		return common.NewKeysResponse(req.MsgType, keys, err)
	case common.MsgTDelete:
		err := store.Delete(req.Keys...)
		return common.NewAckResponse(req.MsgType, err)
	case common.MsgTHashSetAll:
		err := store.HashSetAll(req.Key, req.Fields)
		return common.NewAckResponse(req.MsgType, err)
	case common.MsgTHashGetAll:
		fields, err := store.HashGetAll(req.Key)
		return common.NewFieldsResponse(req.MsgType, fields, err)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("unsupported message type: %s", req.MsgType),
		)
	}
}
