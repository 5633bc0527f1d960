package network

const (
	MsgTypeHeartbeat = 1
	MsgTypeIdentify  = 2
	MsgTypeError     = 9

	MsgTypeCreateMatch = 101
	MsgTypeJoinMatch   = 102
	MsgTypeLeaveMatch  = 103
	MsgTypeJoinSlot    = 104

	MsgTypePlayerAction = 201
	MsgTypeSaveMatch    = 202

	MsgTypeMatchSync  = 301
	MsgTypeNotice     = 302
	MsgTypeMatchEnd   = 303
	MsgTypeMatchSaved = 304
)
