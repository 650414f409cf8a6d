package dmp

import (
	"fmt"
)

// fakeTransport is a scriptable register-level stand-in for the device.
// The FIFO count register serves a scripted sequence of backlog values and
// the FIFO data register serves a byte stream, so the acquirer's drain and
// reset behavior can be exercised deterministically.
type fakeTransport struct {
	regs map[byte]byte

	counts   []uint16 // successive FIFO count reads, last value repeats
	countIdx int

	fifoData []byte // stream served by FIFO data register reads
	fifoPos  int

	fifoResets int
	dmpResets  int

	corruptMem bool // drop DMP memory writes so verification fails
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{regs: map[byte]byte{regWhoAmI: expectedDeviceID}}
}

func (f *fakeTransport) ReadByte(reg byte) (byte, error) {
	return f.regs[reg], nil
}

func (f *fakeTransport) ReadBytes(reg byte, buf []byte) error {
	if reg == regFIFORW {
		if f.fifoPos+len(buf) > len(f.fifoData) {
			return fmt.Errorf("fifo underrun: want %d bytes at %d of %d", len(buf), f.fifoPos, len(f.fifoData))
		}
		copy(buf, f.fifoData[f.fifoPos:])
		f.fifoPos += len(buf)
		return nil
	}
	for i := range buf {
		buf[i] = f.regs[reg+byte(i)]
	}
	return nil
}

func (f *fakeTransport) ReadWord(reg byte) (uint16, error) {
	if reg == regFIFOCountH {
		c := f.counts[f.countIdx]
		if f.countIdx < len(f.counts)-1 {
			f.countIdx++
		}
		return c, nil
	}
	return uint16(f.regs[reg])<<8 | uint16(f.regs[reg+1]), nil
}

func (f *fakeTransport) WriteByte(reg byte, value byte) error {
	if reg == regUserCtrl {
		// The reset bits self-clear in hardware.
		if value&0x04 != 0 {
			f.fifoResets++
		}
		if value&0x08 != 0 {
			f.dmpResets++
		}
		value &^= 0x0C
	}
	f.regs[reg] = value
	return nil
}

func (f *fakeTransport) WriteBytes(reg byte, buf []byte) error {
	if reg == regMemRW && f.corruptMem {
		return nil
	}
	for i, b := range buf {
		f.regs[reg+byte(i)] = b
	}
	return nil
}

func (f *fakeTransport) WriteWord(reg byte, value uint16) error {
	f.regs[reg] = byte(value >> 8)
	f.regs[reg+1] = byte(value)
	return nil
}

func (f *fakeTransport) MaxBurst() int { return 32 }
