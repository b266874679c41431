package sshserver

import (
	"context"
	"io"
	"net"
	"time"

	gliderssh "github.com/gliderlabs/ssh"

	"pkt.systems/intelhub/core"
	"pkt.systems/intelhub/internal/eventbus"
	"pkt.systems/intelhub/schema"
	"pkt.systems/pslog"
)

// Server exposes a read-only tab status console over SSH.
type Server struct {
	Addr        string
	HostKeyPath string
	Listener    net.Listener
	Service     core.Service
	EventBus    *eventbus.Bus
	logger      pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}

	server := &gliderssh.Server{
		Addr:    s.Addr,
		Handler: s.handleSession,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	remote := sess.RemoteAddr().String()
	log = log.With("remote", remote)
	if id := sess.Context().SessionID(); id != "" {
		log = log.With("ssh_session", id)
	}

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		return
	}
	log.Info("ssh session opened", "term", pty.Term)

	var events <-chan schema.TabEvent
	var unsubscribe func()
	if s.EventBus != nil {
		events, unsubscribe = s.EventBus.Subscribe()
	}
	if unsubscribe != nil {
		defer unsubscribe()
	}

	view := newStatusSession(sess, s.Service, events)
	view.SetWidth(pty.Window.Width)
	view.Run(sess.Context(), winCh)
	log.Info("ssh session closed", "term", pty.Term)
}

// statusSession renders the status table and reacts to tab events and
// keystrokes until the client disconnects.
type statusSession struct {
	sess    gliderssh.Session
	service core.Service
	events  <-chan schema.TabEvent
	screen  *screen
	width   int
}

func newStatusSession(sess gliderssh.Session, service core.Service, events <-chan schema.TabEvent) *statusSession {
	return &statusSession{
		sess:    sess,
		service: service,
		events:  events,
		screen:  newScreen(sess),
		width:   80,
	}
}

func (v *statusSession) SetWidth(width int) {
	if width > 0 {
		v.width = width
	}
}

func (v *statusSession) Run(ctx context.Context, winCh <-chan gliderssh.Window) {
	v.screen.EnterAltScreen()
	defer v.screen.ExitAltScreen()
	v.redraw(ctx)

	keys := make(chan byte, 8)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := v.sess.Read(buf)
			if err != nil {
				return
			}
			if n > 0 {
				select {
				case keys <- buf[0]:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	// Redraw periodically as a fallback in case an event is dropped.
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case win, ok := <-winCh:
			if !ok {
				return
			}
			v.SetWidth(win.Width)
			v.redraw(ctx)
		case <-ticker.C:
			v.redraw(ctx)
		case _, ok := <-v.events:
			if !ok {
				v.events = nil
				continue
			}
			v.redraw(ctx)
		case key, ok := <-keys:
			if !ok {
				return
			}
			switch key {
			case 'q', 'Q', 3, 4: // q, Ctrl-C, Ctrl-D
				return
			case 'r', 'R':
				v.service.RefreshAll(ctx)
				v.redraw(ctx)
			}
		}
	}
}

func (v *statusSession) redraw(ctx context.Context) {
	resp, err := v.service.ListTabs(ctx, schema.ListTabsRequest{})
	if err != nil {
		_ = v.screen.Render([]string{"status unavailable: " + err.Error()})
		return
	}
	_ = v.screen.Render(renderStatusLines(resp, v.width))
}
