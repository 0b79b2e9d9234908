package pn532

import "fmt"

// Frame is a decoded HSU frame. Ack frames carry no TFI or data.
type Frame struct {
	Ack  bool
	TFI  byte
	Data []byte // command/response code followed by its parameters
}

func checksum(b []byte) byte {
	var sum byte
	for _, v := range b {
		sum += v
	}
	return ^sum + 1
}

// EncodeFrame builds a host-to-PN532 information frame for cmd.
func EncodeFrame(cmd byte, params []byte) ([]byte, error) {
	n := 2 + len(params) // TFI + cmd + params
	if n > MaxDataLength {
		return nil, ErrDataTooLong
	}

	out := make([]byte, 0, n+7)
	out = append(out, Preamble, StartCode1, StartCode2, byte(n), checksum([]byte{byte(n)}))
	body := len(out)
	out = append(out, HostToPN532, cmd)
	out = append(out, params...)
	out = append(out, checksum(out[body:]), Postamble)
	return out, nil
}

// ParseFrame decodes the first frame found in buf. Bytes before the start
// code are skipped. n is the number of bytes consumed, including skipped
// ones; it is zero when err is ErrShortFrame so the caller can read more.
// On ErrBadFrame and ErrNack, n covers the offending frame.
func ParseFrame(buf []byte) (f *Frame, n int, err error) {
	i := startCode(buf)
	if i < 0 || len(buf) < i+4 {
		return nil, 0, ErrShortFrame
	}

	length, lcs := buf[i+2], buf[i+3]
	hdr := i + 4

	switch {
	case length == 0x00 && lcs == 0xFF:
		return &Frame{Ack: true}, skipPostamble(buf, hdr), nil
	case length == 0xFF && lcs == 0x00:
		return nil, skipPostamble(buf, hdr), ErrNack
	case length == 0 || length+lcs != 0:
		return nil, i + 2, fmt.Errorf("%w: bad length checksum", ErrBadFrame)
	}

	end := hdr + int(length)
	if len(buf) < end+1 {
		return nil, 0, ErrShortFrame
	}
	body := buf[hdr:end]
	if checksum(body) != buf[end] {
		return nil, end + 1, fmt.Errorf("%w: bad data checksum", ErrBadFrame)
	}

	f = &Frame{TFI: body[0], Data: make([]byte, len(body)-1)}
	copy(f.Data, body[1:])
	return f, skipPostamble(buf, end+1), nil
}

func startCode(buf []byte) int {
	for i := 0; i+1 < len(buf); i++ {
		if buf[i] == StartCode1 && buf[i+1] == StartCode2 {
			return i
		}
	}
	return -1
}

func skipPostamble(buf []byte, n int) int {
	if n < len(buf) && buf[n] == Postamble {
		return n + 1
	}
	return n
}
