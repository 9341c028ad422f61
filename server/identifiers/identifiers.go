package identifiers

// RoomID is the opaque key identifying a signaling room.
type RoomID string

// ClientID identifies a single signaling connection on the relay.
type ClientID string

func (r RoomID) String() string {
	return string(r)
}

func (c ClientID) String() string {
	return string(c)
}
