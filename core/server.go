package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/gliderlabs/ssh"
	"github.com/josephlewis42/kshell/core/config"
	"github.com/josephlewis42/kshell/core/logger"
	"github.com/josephlewis42/kshell/core/ttylog"
	gossh "golang.org/x/crypto/ssh"
)

// recordingTimeFormat names recordings so they sort by start time.
const recordingTimeFormat = "20060102T150405Z"

// Server gives every SSH session its own machine.
type Server struct {
	configuration *config.Configuration
	logger        *logger.Logger
	log           *log.Logger
	sshServer     *ssh.Server
}

// NewServer creates a server that writes machine events to appLog and
// diagnostics to diag.
func NewServer(configuration *config.Configuration, appLog io.Writer, diag *log.Logger) (*Server, error) {
	signer, err := configuration.HostSigner()
	if err != nil {
		return nil, fmt.Errorf("couldn't load host key: %w", err)
	}

	server := &Server{
		configuration: configuration,
		logger:        logger.NewJsonLinesLogRecorder(appLog),
		log:           diag,
	}

	server.sshServer = &ssh.Server{
		Addr:    fmt.Sprintf(":%d", configuration.SSHPort),
		Handler: server.HandleSession,
	}
	if banner := configuration.SSHBanner; banner != "" {
		server.sshServer.ServerConfigCallback = func(ctx ssh.Context) *gossh.ServerConfig {
			return &gossh.ServerConfig{
				BannerCallback: func(gossh.ConnMetadata) string {
					return banner
				},
			}
		}
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

// HandleSession runs a shell on a new machine until the client leaves or
// exits the shell.
func (s *Server) HandleSession(sess ssh.Session) {
	status, err := s.runSession(sess)
	if err != nil {
		s.log.Printf("session from %s failed: %v", sess.RemoteAddr(), err)
		fmt.Fprintf(sess, "kshell: %v\r\n", err)
	}
	sess.Exit(status)
}

func (s *Server) runSession(sess ssh.Session) (int, error) {
	ptyInfo, winch, isPty := sess.Pty()
	if !isPty {
		return 1, fmt.Errorf("a terminal is required, try ssh -t")
	}

	// The console size is fixed when the machine boots.
	go func() {
		for range winch {
		}
	}()

	width, height := ptyInfo.Window.Width, ptyInfo.Window.Height
	if width <= 0 || height <= 0 {
		width, height = s.configuration.Console.Width, s.configuration.Console.Height
	}

	sessionLogger := s.logger.NewSession()

	recordingName := fmt.Sprintf("%s-%s.%s",
		time.Now().UTC().Format(recordingTimeFormat),
		sessionLogger.SessionID(),
		ttylog.AsciicastFileExt)
	recording, err := s.configuration.CreateRecording(recordingName)
	if err != nil {
		return 1, err
	}
	defer recording.Close()

	recorder := ttylog.NewRecorder(ttylog.NewAsciicastLogSink(recording, width, height))
	defer recorder.Close()

	sessionLogger.Record(&logger.SessionStart{
		Hostname:   s.configuration.Hostname,
		RemoteAddr: sess.RemoteAddr().String(),
		User:       sess.User(),
		Width:      width,
		Height:     height,
		TTYLog:     recordingName,
	})

	session, err := NewSession(s.configuration, SessionOptions{
		Width:    width,
		Height:   height,
		Output:   recorder.Output(sess),
		Recorder: sessionLogger,
	})
	if err != nil {
		return 1, err
	}

	return session.Run(sess.Context(), recorder.Input(sess)), nil
}

// ListenAndServe listens on the configured port.
func (s *Server) ListenAndServe() error {
	s.log.Printf("- Starting SSH server on %s\n", s.sshServer.Addr)
	return s.sshServer.ListenAndServe()
}

// Serve accepts connections from l.
func (s *Server) Serve(l net.Listener) error {
	return s.sshServer.Serve(l)
}

// Shutdown stops accepting connections and waits for open ones to finish or
// ctx to end.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}
