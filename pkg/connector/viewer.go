package connector

// Viewer receives notifications about the animation a Connection watches.
type Viewer struct {
	conn *Connection
}

func (v *Viewer) UpdateViewCount(count int32, unused *bool) error {
	v.conn.updateViewCount(count)
	return nil
}
