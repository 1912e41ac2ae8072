package sane

import (
	"bytes"
	"fmt"
	"io"
)

type Info struct {
	Inexact          bool // backend clamped or rounded the value; not an error
	ReloadOptions    bool // descriptor cache is stale, refetch before next access
	ReloadParameters bool // re-read GetParameters before the next scan
}

func infoFromWord(w Word) Info {
	return Info{
		Inexact:          w&1 != 0,
		ReloadOptions:    w&2 != 0,
		ReloadParameters: w&4 != 0,
	}
}

func (s *Session) ListOptions() ([]Option, error) {
	const op = "list-options"
	if s.state != stateDeviceOpen && s.state != stateScanning {
		return nil, invalidStateErr(op, "no device is open")
	}
	if s.options != nil {
		return s.options, nil
	}

	if err := s.applyDeadline(); err != nil {
		return nil, transportErr(op, err)
	}
	if err := writeWord(s.conn, Word(opGetOptionDescriptors)); err != nil {
		return nil, transportErr(op, err)
	}
	if err := writeWord(s.conn, s.handle); err != nil {
		return nil, transportErr(op, err)
	}
	n, err := readWord(s.conn)
	if err != nil {
		return nil, transportErr(op, err)
	}
	if _, err := readWord(s.conn); err != nil { // discard word
		return nil, transportErr(op, err)
	}

	cursor := &groupCursor{}
	opts := make([]Option, 0, n)
	for i := 1; i < int(n); i++ {
		opt, ok, err := readOptionDescriptor(s.conn, i, cursor)
		if err != nil {
			return nil, transportErr(op, err)
		}
		if ok {
			opts = append(opts, opt)
		}
	}
	s.options = opts
	return opts, nil
}

func (s *Session) Option(name string) (Option, bool) {
	for _, o := range s.options {
		if o.Name == name {
			return o, true
		}
	}
	return Option{}, false
}

func (s *Session) GetOptionValue(opt Option) (interface{}, error) {
	const op = "get-option"
	if !opt.Capabilities.Readable() {
		return nil, invalidStateErr(op, "option "+opt.Name+" is not readable")
	}
	_, respType, payload, err := s.controlOption(op, opt, actionGet, nil)
	if err != nil {
		return nil, err
	}
	return decodeOptionValue(respType, payload)
}

func (s *Session) SetOptionValue(opt Option, value interface{}) (Info, error) {
	const op = "set-option"
	if !opt.Capabilities.Writable() {
		return Info{}, invalidStateErr(op, "option "+opt.Name+" is not writable")
	}
	payload, err := encodeOptionValue(opt, value)
	if err != nil {
		return Info{}, err
	}
	info, _, _, err := s.controlOption(op, opt, actionSet, payload)
	if err != nil {
		return Info{}, err
	}
	if info.ReloadOptions {
		s.options = nil
	}
	return info, nil
}

func (s *Session) SetOptionAuto(opt Option) (Info, error) {
	const op = "set-option-auto"
	if !opt.Capabilities.AutoSettable() {
		return Info{}, invalidStateErr(op, "option "+opt.Name+" does not support automatic mode")
	}
	info, _, _, err := s.controlOption(op, opt, actionSetAuto, nil)
	if err != nil {
		return Info{}, err
	}
	if info.ReloadOptions {
		s.options = nil
	}
	return info, nil
}

func (s *Session) controlOption(op string, opt Option, action controlAction, payload []byte) (Info, ValueType, []byte, error) {
	if s.state != stateDeviceOpen && s.state != stateScanning {
		return Info{}, 0, nil, invalidStateErr(op, "no device is open")
	}

	status, info, respType, respPayload, resource, err := s.sendControlOption(opt, action, payload)
	if err != nil {
		return Info{}, 0, nil, err
	}
	if resource != "" {
		if err := s.authorize(op, resource); err != nil {
			return Info{}, 0, nil, err
		}
		status, info, respType, respPayload, resource, err = s.sendControlOption(opt, action, payload)
		if err != nil {
			return Info{}, 0, nil, err
		}
	}
	if status != StatusGood {
		return Info{}, 0, nil, statusErr(op, status)
	}
	return info, respType, respPayload, nil
}

func (s *Session) sendControlOption(opt Option, action controlAction, payload []byte) (status Status, info Info, respType ValueType, respPayload []byte, resource string, err error) {
	const op = "control-option"
	if err = s.applyDeadline(); err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, Word(opControlOption)); err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, s.handle); err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, Word(opt.Index)); err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, Word(action)); err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, Word(opt.Type)); err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	if err = writeWord(s.conn, Word(len(payload))); err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	if len(payload) > 0 {
		if _, err = s.conn.Write(payload); err != nil {
			return 0, Info{}, 0, nil, "", transportErr(op, err)
		}
	}

	statusW, err := readWord(s.conn)
	if err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	infoW, err := readWord(s.conn)
	if err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	respTypeW, err := readWord(s.conn)
	if err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	sizeW, err := readWord(s.conn)
	if err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	respPayload = make([]byte, sizeW)
	if sizeW > 0 {
		if _, err = io.ReadFull(s.conn, respPayload); err != nil {
			return 0, Info{}, 0, nil, "", transportErr(op, err)
		}
	}
	resource, err = readString(s.conn)
	if err != nil {
		return 0, Info{}, 0, nil, "", transportErr(op, err)
	}
	return Status(statusW), infoFromWord(infoW), ValueType(respTypeW), respPayload, resource, nil
}

func encodeOptionValue(opt Option, value interface{}) ([]byte, error) {
	switch opt.Type {
	case TypeBool:
		b, ok := value.(bool)
		if !ok {
			return nil, constraintErr("set-option", opt.Name+" expects a bool")
		}
		v := Word(0)
		if b {
			v = 1
		}
		return encodeWords([]Word{v}), nil
	case TypeInt:
		n := opt.ElementSize / 4
		switch vals := value.(type) {
		case int:
			return encodeWords(repeatWord(WordFromInt(int32(vals)), n)), nil
		case []int:
			if len(vals) != n {
				return nil, constraintErr("set-option", fmt.Sprintf("%s expects %d int values", opt.Name, n))
			}
			words := make([]Word, n)
			for i, v := range vals {
				words[i] = WordFromInt(int32(v))
			}
			return encodeWords(words), nil
		default:
			return nil, constraintErr("set-option", opt.Name+" expects an int or []int")
		}
	case TypeFixed:
		n := opt.ElementSize / 4
		switch vals := value.(type) {
		case float64:
			return encodeWords(repeatWord(WordFromFixed(vals), n)), nil
		case []float64:
			if len(vals) != n {
				return nil, constraintErr("set-option", fmt.Sprintf("%s expects %d fixed values", opt.Name, n))
			}
			words := make([]Word, n)
			for i, v := range vals {
				words[i] = WordFromFixed(v)
			}
			return encodeWords(words), nil
		default:
			return nil, constraintErr("set-option", opt.Name+" expects a float64 or []float64")
		}
	case TypeString:
		str, ok := value.(string)
		if !ok {
			return nil, constraintErr("set-option", opt.Name+" expects a string")
		}
		buf := make([]byte, opt.ElementSize)
		copy(buf, str)
		buf[len(buf)-1] = 0
		return buf, nil
	case TypeButton:
		return nil, nil
	default:
		return nil, constraintErr("set-option", opt.Name+" is not a settable value type")
	}
}

func repeatWord(v Word, n int) []Word {
	if n < 1 {
		n = 1
	}
	words := make([]Word, n)
	for i := range words {
		words[i] = v
	}
	return words
}

func decodeOptionValue(valueType ValueType, payload []byte) (interface{}, error) {
	switch valueType {
	case TypeBool:
		if len(payload) < 4 {
			return nil, framingErr("get-option", "bool payload too short")
		}
		return bigEndianWord(payload) != 0, nil
	case TypeInt:
		words, err := decodeWords(payload)
		if err != nil {
			return nil, err
		}
		if len(words) == 1 {
			return int(words[0].Int()), nil
		}
		out := make([]int, len(words))
		for i, w := range words {
			out[i] = int(w.Int())
		}
		return out, nil
	case TypeFixed:
		words, err := decodeWords(payload)
		if err != nil {
			return nil, err
		}
		if len(words) == 1 {
			return words[0].Fixed(), nil
		}
		out := make([]float64, len(words))
		for i, w := range words {
			out[i] = w.Fixed()
		}
		return out, nil
	case TypeString:
		i := bytes.IndexByte(payload, 0)
		if i < 0 {
			i = len(payload)
		}
		return string(payload[:i]), nil
	case TypeButton:
		return nil, nil
	default:
		return nil, framingErr("get-option", "unknown response value type")
	}
}

func bigEndianWord(b []byte) Word {
	return Word(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}

func decodeWords(payload []byte) ([]Word, error) {
	if len(payload)%4 != 0 {
		return nil, framingErr("get-option", "value payload is not a whole number of words")
	}
	words := make([]Word, len(payload)/4)
	for i := range words {
		words[i] = bigEndianWord(payload[i*4 : i*4+4])
	}
	return words, nil
}
