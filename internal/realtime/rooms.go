package realtime

// ChatRoomKey derives the shared key for a two-party conversation. The pair is
// sorted so both participants land on the same room regardless of who opened
// the chat.
func ChatRoomKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return "room:" + a + ":" + b
}

// LiveRoomKey names the fan-out room for a seller's livestream channel.
func LiveRoomKey(channelID string) string {
	return "live:" + channelID
}
