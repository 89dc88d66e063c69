package interfaces

// LoggerInterface is the minimal sink the archivist writes to. Any
// *log.Logger satisfies it, as does every test capture buffer.
type LoggerInterface interface {
	Println(v ...interface{})
}
