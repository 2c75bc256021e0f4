package console

// Test bus wiring on ui_in and uio_out
const (
	PinCS   = 0 // ui_in, active low
	PinSCK  = 1 // ui_in
	PinMOSI = 2 // ui_in
	PinMISO = 1 // uio_out
)

const spiHeaderBits = 16

// spiTarget decodes register accesses from the SPI test bus. The inputs are
// sampled on every console clock, so SCK must stay at each level for more
// than one clock period.
//
// A transaction is a 16 bit header followed by the data, both MSB first:
//
// Bit 15     - 1=write, 0=read
// Bit 14-13  - Width (0=byte, 1=half, 2=word)
// Bit 5-0    - Register address
//
// MOSI is sampled on rising SCK. During a read MISO changes on falling SCK,
// starting with the first falling edge after the header.
type spiTarget struct {
	sck bool

	// bits counts the bits shifted in since CS was asserted
	bits   int
	header uint16
	data   uint32

	write   bool
	width   Width
	address uint8

	// out holds read data not yet shifted onto MISO
	out     uint32
	outBits int
}

func (s *spiTarget) reset() {
	*s = spiTarget{}
}

// cycle samples the bus for one console clock
func (s *spiTarget) cycle(c *Console) {
	in := c.uiIn.Value()
	if readBitN(in, PinCS) {
		if s.bits > 0 && s.bits < spiHeaderBits+s.width.Bits() {
			c.log.Debugf("spi: transaction aborted after %d bits", s.bits)
		}
		s.reset()
		c.uioOut.SetBit(PinMISO, false)
		return
	}

	sck := readBitN(in, PinSCK)
	rising := sck && !s.sck
	falling := !sck && s.sck
	s.sck = sck

	if rising {
		s.shift(c, readBitN(in, PinMOSI))
	}
	if falling && s.outBits > 0 {
		s.outBits--
		c.uioOut.SetBit(PinMISO, readBitN(uint64(s.out), uint(s.outBits)))
	}
}

func (s *spiTarget) shift(c *Console, mosi bool) {
	if s.bits < spiHeaderBits {
		s.header = uint16(writeBitN(uint64(s.header)<<1, 0, mosi))
		s.bits++

		if s.bits == spiHeaderBits {
			s.write = readBitN(uint64(s.header), 15)
			s.width = Width((s.header >> 13) & 0x3)
			s.address = uint8(s.header & 0x3F)
			if !s.write && s.width != WidthNone {
				s.out = c.Read(s.address, s.width)
				s.outBits = s.width.Bits()
			}
		}
		return
	}

	total := spiHeaderBits + s.width.Bits()
	if s.bits >= total {
		return
	}

	s.data = uint32(writeBitN(uint64(s.data)<<1, 0, mosi))
	s.bits++

	if s.write && s.bits == total {
		c.Write(s.address, s.data, s.width)
	}
}
