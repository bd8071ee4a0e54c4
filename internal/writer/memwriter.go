package writer

// MemWriter keeps the last written document in memory.
type MemWriter struct {
	Buf    []byte
	Writes int
}

func (w *MemWriter) WriteState(data []byte) error {
	w.Buf = append(w.Buf[:0], data...)
	w.Writes++
	return nil
}
