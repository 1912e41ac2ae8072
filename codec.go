package sane

import "io"

type Device struct {
	Name, Vendor, Model, Type string
}

func readDevice(r io.Reader) (Device, error) {
	name, err := readString(r)
	if err != nil {
		return Device{}, err
	}
	vendor, err := readString(r)
	if err != nil {
		return Device{}, err
	}
	model, err := readString(r)
	if err != nil {
		return Device{}, err
	}
	typ, err := readString(r)
	if err != nil {
		return Device{}, err
	}
	return Device{Name: name, Vendor: vendor, Model: model, Type: typ}, nil
}

func readDeviceList(r io.Reader) ([]Device, error) {
	n, err := readWord(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	devices := make([]Device, 0, n-1)
	for i := Word(0); i < n-1; i++ {
		// The pointer word is read but its value is ignored: a genuine null
		// here would be a protocol violation from a well-behaved daemon, and
		// the original client treats it as always-present rather than
		// surfacing a framing error.
		if _, err := readWord(r); err != nil {
			return nil, err
		}
		dev, err := readDevice(r)
		if err != nil {
			return nil, err
		}
		devices = append(devices, dev)
	}
	if _, err := readWord(r); err != nil { // trailing discard word
		return nil, err
	}
	return devices, nil
}

type Range struct {
	Min, Max, Quant Word
}

type Constraint struct {
	Type    ConstraintType
	Range   *Range
	Words   []Word   // ConstraintWordList
	Strings []string // ConstraintStringList
}

func readConstraint(r io.Reader, valueType ValueType) (Constraint, error) {
	ct, err := readWord(r)
	if err != nil {
		return Constraint{}, err
	}
	switch ConstraintType(ct) {
	case ConstraintNone:
		return Constraint{Type: ConstraintNone}, nil
	case ConstraintRange:
		// A pointer word to the range struct precedes the three range
		// words; it carries no information of its own and is discarded.
		if _, err := readWord(r); err != nil {
			return Constraint{}, err
		}
		words, err := readWords(r, 3)
		if err != nil {
			return Constraint{}, err
		}
		if valueType != TypeInt && valueType != TypeFixed {
			_lg.Warnf("range constraint on option of type %s, dropping constraint", valueType)
			return Constraint{Type: ConstraintNone}, nil
		}
		return Constraint{Type: ConstraintRange, Range: &Range{Min: words[0], Max: words[1], Quant: words[2]}}, nil
	case ConstraintWordList:
		n, err := readWord(r)
		if err != nil {
			return Constraint{}, err
		}
		all, err := readWords(r, int(n))
		if err != nil {
			return Constraint{}, err
		}
		// all[0] is a count of the values that follow and is discarded.
		var values []Word
		if len(all) > 0 {
			values = all[1:]
		}
		return Constraint{Type: ConstraintWordList, Words: values}, nil
	case ConstraintStringList:
		n, err := readWord(r)
		if err != nil {
			return Constraint{}, err
		}
		strs := make([]string, n)
		for i := range strs {
			s, err := readString(r)
			if err != nil {
				return Constraint{}, err
			}
			strs[i] = s
		}
		// The last entry is an empty terminator and is discarded.
		var values []string
		if len(strs) > 0 {
			values = strs[:len(strs)-1]
		}
		return Constraint{Type: ConstraintStringList, Strings: values}, nil
	default:
		return Constraint{}, framingErr("decode-constraint", "unknown constraint type")
	}
}

type Option struct {
	Index        int
	Name         string
	Title        string
	Description  string
	Group        string
	Type         ValueType
	Unit         Unit
	ElementSize  int // size of the whole value in bytes; int/fixed values hold ElementSize/4 words
	Capabilities CapabilitySet
	Constraint   Constraint
}

type groupCursor struct {
	name string
}

// A descriptor of type "group" updates cursor and returns ok=false so the
// caller skips it from the option list while later descriptors still pick
// up its Group name.
func readOptionDescriptor(r io.Reader, index int, cursor *groupCursor) (opt Option, ok bool, err error) {
	if _, err = readWord(r); err != nil { // leading pointer word, discarded
		return Option{}, false, err
	}
	name, err := readString(r)
	if err != nil {
		return Option{}, false, err
	}
	title, err := readString(r)
	if err != nil {
		return Option{}, false, err
	}
	desc, err := readString(r)
	if err != nil {
		return Option{}, false, err
	}
	valueTypeW, err := readWord(r)
	if err != nil {
		return Option{}, false, err
	}
	unitW, err := readWord(r)
	if err != nil {
		return Option{}, false, err
	}
	sizeW, err := readWord(r)
	if err != nil {
		return Option{}, false, err
	}
	capW, err := readWord(r)
	if err != nil {
		return Option{}, false, err
	}
	valueType := ValueType(valueTypeW)
	constraint, err := readConstraint(r, valueType)
	if err != nil {
		return Option{}, false, err
	}
	if valueType == typeGroup {
		cursor.name = title
		return Option{}, false, nil
	}
	opt = Option{
		Index:        index,
		Name:         name,
		Title:        title,
		Description:  desc,
		Group:        cursor.name,
		Type:         valueType,
		Unit:         Unit(unitW),
		ElementSize:  int(sizeW),
		Capabilities: decodeCapabilities(capW),
		Constraint:   constraint,
	}
	return opt, true, nil
}

type Parameters struct {
	Format        FrameType
	IsLast        bool
	BytesPerLine  int
	PixelsPerLine int
	Lines         int // <= 0 means unknown until the frame is read
	Depth         int // bits per sample
}

func readParameters(r io.Reader) (Parameters, error) {
	format, err := readWord(r)
	if err != nil {
		return Parameters{}, err
	}
	isLast, err := readBool(r)
	if err != nil {
		return Parameters{}, err
	}
	bpl, err := readWord(r)
	if err != nil {
		return Parameters{}, err
	}
	ppl, err := readWord(r)
	if err != nil {
		return Parameters{}, err
	}
	lines, err := readWord(r)
	if err != nil {
		return Parameters{}, err
	}
	depth, err := readWord(r)
	if err != nil {
		return Parameters{}, err
	}
	return Parameters{
		Format:        FrameType(format),
		IsLast:        isLast,
		BytesPerLine:  int(int32(bpl)),
		PixelsPerLine: int(int32(ppl)),
		Lines:         int(int32(lines)),
		Depth:         int(int32(depth)),
	}, nil
}
