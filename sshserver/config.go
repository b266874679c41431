package sshserver

// Config defines SSH status console settings.
type Config struct {
	Enabled     bool
	Addr        string
	HostKeyPath string
}
