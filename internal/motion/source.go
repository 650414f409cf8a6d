package motion

import (
	"github.com/relabs-tech/motion_computer/internal/dmp"
)

// SampleSource pulls fused samples from a device session. Next propagates
// dmp.ErrNoData unchanged so callers can treat an empty ring buffer as a
// skip, not a fault.
type SampleSource struct {
	dev *dmp.Device
}

// NewSource wraps a device session in a sample source.
func NewSource(dev *dmp.Device) *SampleSource {
	return &SampleSource{dev: dev}
}

// Next acquires, decodes and derives one sample.
func (s *SampleSource) Next() (Sample, error) {
	pkt, err := s.dev.CurrentPacket()
	if err != nil {
		return Sample{}, err
	}
	m, err := dmp.DecodePacket(pkt)
	if err != nil {
		return Sample{}, err
	}
	return Derive(m), nil
}
