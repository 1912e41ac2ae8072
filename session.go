package sane

import (
	"fmt"
	"net"
	"time"
)

// protocolVersion is the SANE 1.0.3 version word sent during INIT: major 1,
// minor 0, build 3.
const protocolVersion Word = 0x01000003

type sessionState int

const (
	stateFresh sessionState = iota
	stateInitialized
	stateDeviceOpen
	stateScanning
	stateClosed
)

// a Session must not be shared across goroutines without external
// synchronization: all RPCs are serialized on one control socket.
type Session struct {
	conn  net.Conn
	host  string
	state sessionState
	cfg   *sessionConfig

	handle  Word
	options []Option // nil means "needs a fresh GET_OPTION_DESCRIPTORS"

	dataConn  net.Conn
	dataOrder ByteOrder
}

func NewSession(address string, opts ...SessionOption) (*Session, error) {
	cfg := defaultSessionConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	host, _, err := net.SplitHostPort(address)
	if err != nil {
		host = address
		address = fmt.Sprintf("%s:%d", address, DefaultPort)
	}

	conn, err := net.DialTimeout("tcp", address, cfg.connectTimeout)
	if err != nil {
		return nil, transportErr("dial", err)
	}

	return &Session{conn: conn, host: host, state: stateFresh, cfg: cfg}, nil
}

func (s *Session) requireState(op string, want sessionState) error {
	if s.state != want {
		return invalidStateErr(op, fmt.Sprintf("session is not in the required state"))
	}
	return nil
}

func (s *Session) applyDeadline() error {
	if s.cfg.readTimeout <= 0 {
		return s.conn.SetDeadline(time.Time{})
	}
	return s.conn.SetDeadline(time.Now().Add(s.cfg.readTimeout))
}

func (s *Session) Initialize() error {
	const op = "initialize"
	if err := s.requireState(op, stateFresh); err != nil {
		return err
	}
	if err := s.applyDeadline(); err != nil {
		return transportErr(op, err)
	}
	if err := writeWord(s.conn, Word(opInit)); err != nil {
		return transportErr(op, err)
	}
	if err := writeWord(s.conn, protocolVersion); err != nil {
		return transportErr(op, err)
	}
	if err := writeString(s.conn, s.cfg.userName); err != nil {
		return transportErr(op, err)
	}
	status, err := readWord(s.conn)
	if err != nil {
		return transportErr(op, err)
	}
	if _, err := readWord(s.conn); err != nil { // echoed server version, unused
		return transportErr(op, err)
	}
	if Status(status) != StatusGood {
		return statusErr(op, Status(status))
	}
	s.state = stateInitialized
	return nil
}

func (s *Session) ListDevices() ([]Device, error) {
	const op = "list-devices"
	if err := s.requireState(op, stateInitialized); err != nil {
		return nil, err
	}
	if err := s.applyDeadline(); err != nil {
		return nil, transportErr(op, err)
	}
	if err := writeWord(s.conn, Word(opGetDevices)); err != nil {
		return nil, transportErr(op, err)
	}
	status, err := readWord(s.conn)
	if err != nil {
		return nil, transportErr(op, err)
	}
	if Status(status) != StatusGood {
		return nil, statusErr(op, Status(status))
	}
	devices, err := readDeviceList(s.conn)
	if err != nil {
		return nil, transportErr(op, err)
	}
	return devices, nil
}

// GetDevice is a convenience wrapper over ListDevices: there is no dedicated
// get-device RPC.
func (s *Session) GetDevice(name string) (Device, error) {
	devices, err := s.ListDevices()
	if err != nil {
		return Device{}, err
	}
	for _, d := range devices {
		if d.Name == name {
			return d, nil
		}
	}
	return Device{}, &Error{Kind: KindStatus, Status: StatusInvalid, Op: "get-device", Message: fmt.Sprintf("no device named %q", name)}
}

func (s *Session) Open(name string) error {
	const op = "open-device"
	if err := s.requireState(op, stateInitialized); err != nil {
		return err
	}

	status, handle, resource, err := s.sendOpen(name)
	if err != nil {
		return err
	}
	if resource != "" {
		if err := s.authorize(op, resource); err != nil {
			return err
		}
		status, handle, _, err = s.sendOpen(name)
		if err != nil {
			return err
		}
	}
	if Status(status) != StatusGood {
		return statusErr(op, Status(status))
	}
	s.handle = handle
	s.state = stateDeviceOpen
	s.options = nil
	return nil
}

func (s *Session) sendOpen(name string) (status Status, handle Word, resource string, err error) {
	const op = "open-device"
	if err = s.applyDeadline(); err != nil {
		return 0, 0, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, Word(opOpen)); err != nil {
		return 0, 0, "", transportErr(op, err)
	}
	if err = writeString(s.conn, name); err != nil {
		return 0, 0, "", transportErr(op, err)
	}
	statusW, err := readWord(s.conn)
	if err != nil {
		return 0, 0, "", transportErr(op, err)
	}
	handle, err = readWord(s.conn)
	if err != nil {
		return 0, 0, "", transportErr(op, err)
	}
	resource, err = readString(s.conn)
	if err != nil {
		return 0, 0, "", transportErr(op, err)
	}
	return Status(statusW), handle, resource, nil
}

// authorize always sends cleartext credentials; it never sends the
// MD5-challenge form.
func (s *Session) authorize(op, resource string) error {
	if s.cfg.credentials == nil || !s.cfg.credentials.CanAuthenticate(resource) {
		return authDeniedErr(op, resource)
	}
	user, pass, err := s.cfg.credentials.Credentials(resource)
	if err != nil {
		return authDeniedErr(op, resource)
	}
	if err := s.applyDeadline(); err != nil {
		return transportErr(op, err)
	}
	if err := writeWord(s.conn, Word(opAuthorize)); err != nil {
		return transportErr(op, err)
	}
	if err := writeString(s.conn, resource); err != nil {
		return transportErr(op, err)
	}
	if err := writeString(s.conn, user); err != nil {
		return transportErr(op, err)
	}
	if err := writeString(s.conn, pass); err != nil {
		return transportErr(op, err)
	}
	if _, err := readWord(s.conn); err != nil { // discard reply word
		return transportErr(op, err)
	}
	return nil
}

func (s *Session) CloseDevice() error {
	const op = "close-device"
	if s.state != stateDeviceOpen && s.state != stateScanning {
		return invalidStateErr(op, "no device is open")
	}
	if err := s.applyDeadline(); err != nil {
		return transportErr(op, err)
	}
	if err := writeWord(s.conn, Word(opClose)); err != nil {
		return transportErr(op, err)
	}
	if err := writeWord(s.conn, s.handle); err != nil {
		return transportErr(op, err)
	}
	if _, err := readWord(s.conn); err != nil { // discard reply word
		return transportErr(op, err)
	}
	s.state = stateInitialized
	s.handle = 0
	s.options = nil
	return nil
}

// Cancel is legal between frames only; a caller that needs to abort
// mid-record must Close the Session instead.
func (s *Session) Cancel() error {
	const op = "cancel"
	if s.state != stateDeviceOpen && s.state != stateScanning {
		return invalidStateErr(op, "no device is open")
	}
	if err := s.applyDeadline(); err != nil {
		return transportErr(op, err)
	}
	if err := writeWord(s.conn, Word(opCancel)); err != nil {
		return transportErr(op, err)
	}
	if err := writeWord(s.conn, s.handle); err != nil {
		return transportErr(op, err)
	}
	if _, err := readWord(s.conn); err != nil { // discard reply word
		return transportErr(op, err)
	}
	s.state = stateDeviceOpen
	return nil
}

// Close is idempotent and safe to call from any state, including after a
// fatal transport failure.
func (s *Session) Close() error {
	if s.state == stateClosed {
		return nil
	}
	if s.conn != nil {
		_ = s.applyDeadline()
		_ = writeWord(s.conn, Word(opExit))
		_ = s.conn.Close()
	}
	s.state = stateClosed
	return nil
}

func (s *Session) getParameters() (Parameters, error) {
	const op = "get-parameters"
	if err := s.applyDeadline(); err != nil {
		return Parameters{}, transportErr(op, err)
	}
	if err := writeWord(s.conn, Word(opGetParameters)); err != nil {
		return Parameters{}, transportErr(op, err)
	}
	if err := writeWord(s.conn, s.handle); err != nil {
		return Parameters{}, transportErr(op, err)
	}
	status, err := readWord(s.conn)
	if err != nil {
		return Parameters{}, transportErr(op, err)
	}
	params, err := readParameters(s.conn)
	if err != nil {
		return Parameters{}, transportErr(op, err)
	}
	if Status(status) != StatusGood {
		return Parameters{}, statusErr(op, Status(status))
	}
	return params, nil
}

// StartFrame enters the Scanning state; call ReadFrame next. A caller
// driving a multi-frame scan by hand may call Cancel instead, between the
// return of one ReadFrame and the next StartFrame.
func (s *Session) StartFrame() (Parameters, error) {
	const op = "start-frame"
	if err := s.requireState(op, stateDeviceOpen); err != nil {
		return Parameters{}, err
	}

	status, dataPort, orderW, resource, err := s.sendStart()
	if err != nil {
		return Parameters{}, err
	}
	if resource != "" {
		if err := s.authorize(op, resource); err != nil {
			return Parameters{}, err
		}
		status, dataPort, orderW, _, err = s.sendStart()
		if err != nil {
			return Parameters{}, err
		}
	}
	if Status(status) != StatusGood {
		return Parameters{}, statusErr(op, Status(status))
	}
	params, err := s.getParameters()
	if err != nil {
		return Parameters{}, err
	}

	conn, err := net.DialTimeout("tcp", fmt.Sprintf("%s:%d", s.host, dataPort), s.cfg.connectTimeout)
	if err != nil {
		return Parameters{}, transportErr(op, err)
	}
	if s.cfg.readTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(s.cfg.readTimeout))
	}

	s.dataConn = conn
	s.dataOrder = byteOrderFromWord(orderW)
	s.state = stateScanning
	return params, nil
}

// ReadFrame returns the Session to DeviceOpen whether or not it succeeds.
func (s *Session) ReadFrame(params Parameters) (Frame, error) {
	const op = "read-frame"
	if err := s.requireState(op, stateScanning); err != nil {
		return Frame{}, err
	}
	frame, err := readFrame(s.dataConn, params, s.dataOrder)
	_ = s.dataConn.Close()
	s.dataConn = nil
	s.state = stateDeviceOpen
	if err != nil {
		return Frame{}, err
	}
	return frame, nil
}

func (s *Session) sendStart() (status Status, port Word, order Word, resource string, err error) {
	const op = "start"
	if err = s.applyDeadline(); err != nil {
		return 0, 0, 0, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, Word(opStart)); err != nil {
		return 0, 0, 0, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, s.handle); err != nil {
		return 0, 0, 0, "", transportErr(op, err)
	}
	statusW, err := readWord(s.conn)
	if err != nil {
		return 0, 0, 0, "", transportErr(op, err)
	}
	port, err = readWord(s.conn)
	if err != nil {
		return 0, 0, 0, "", transportErr(op, err)
	}
	order, err = readWord(s.conn)
	if err != nil {
		return 0, 0, 0, "", transportErr(op, err)
	}
	resource, err = readString(s.conn)
	if err != nil {
		return 0, 0, 0, "", transportErr(op, err)
	}
	return Status(statusW), port, order, resource, nil
}

// AcquireImage drives StartFrame/ReadFrame to completion with no opportunity
// for the caller to intervene between frames. A caller that needs to Cancel
// between frames should drive StartFrame/ReadFrame directly instead.
func (s *Session) AcquireImage() (Image, error) {
	if err := s.requireState("acquire-image", stateDeviceOpen); err != nil {
		return Image{}, err
	}
	builder := newImageBuilder()
	for {
		params, err := s.StartFrame()
		if err != nil {
			return Image{}, err
		}
		frame, err := s.ReadFrame(params)
		if err != nil {
			return Image{}, err
		}
		if err := builder.add(frame); err != nil {
			return Image{}, err
		}
		if frame.Parameters.IsLast {
			break
		}
	}
	return builder.build()
}
