// Package uart drives a single serial peripheral in polling, interrupt or DMA
// mode.
//
// The Engine never touches hardware directly. It programs a Registers
// implementation and, for DMA transfers, a pair of DMAChannel
// implementations. Completion, idle-line and error events are fanned out
// from IRQHandler to callbacks registered with RegisterCallback.
package uart

//go:generate go tool mockgen -destination=mock_registers.go -package=uart . Registers,DMAChannel

// WordLength is the number of bits per transferred unit, parity included.
type WordLength uint8

const (
	WordLength8 WordLength = iota
	WordLength9
)

type StopBits uint8

const (
	StopBits1 StopBits = iota
	StopBits2
)

type Parity uint8

const (
	ParityNone Parity = iota
	ParityEven
	ParityOdd
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityEven:
		return "even"
	case ParityOdd:
		return "odd"
	default:
		return "invalid"
	}
}

// Mode selects which directions of the line are enabled.
type Mode uint8

const (
	ModeTx   Mode = 0x01
	ModeRx   Mode = 0x02
	ModeTxRx Mode = ModeTx | ModeRx
)

// Oversampling is the receiver sampling rate relative to the baud rate.
type Oversampling uint8

const (
	Oversampling16 Oversampling = iota
	Oversampling8
)

// Direction identifies one half of the line for DMA requests.
type Direction uint8

const (
	DirectionTx Direction = iota
	DirectionRx
)

// Status is the peripheral status register.
type Status uint16

const (
	StatusPE Status = 1 << iota
	StatusFE
	StatusNE
	StatusORE
	StatusIdle
	StatusRXNE
	StatusTC
	StatusTXE
)

const statusErrors = StatusPE | StatusFE | StatusNE | StatusORE

// Interrupt is a set of interrupt enable bits.
type Interrupt uint16

const (
	InterruptPE Interrupt = 1 << iota
	InterruptTXE
	InterruptTC
	InterruptRXNE
	InterruptIdle
	// InterruptError gates framing, noise and overrun reporting while a
	// DMA reception is active.
	InterruptError
)

// LineConfig is the negotiated line configuration of a port.
type LineConfig struct {
	BaudRate   uint32
	WordLength WordLength
	StopBits   StopBits
	Parity     Parity
	Mode       Mode
}

// Registers is the register-level view of the peripheral.
//
// Implementations must be safe for concurrent use. They must not call back
// into the Engine from any of these methods.
type Registers interface {
	Enable()
	Disable()
	SetWordLength(WordLength)
	SetStopBits(StopBits)
	SetParity(Parity)
	SetOversampling(Oversampling)
	SetBaudDivider(mantissa uint16, fraction uint8)
	SetMode(Mode)

	Status() Status
	ClearStatus(Status)

	// WriteData loads the transmit data register. It clears TXE and TC.
	WriteData(v uint16)
	// ReadData returns the receive data register. It clears RXNE.
	ReadData() uint16

	EnableInterrupt(Interrupt)
	DisableInterrupt(Interrupt)
	InterruptEnabled(Interrupt) bool

	EnableDMA(Direction)
	DisableDMA(Direction)
	DMAEnabled(Direction) bool
}

type DMADirection uint8

const (
	MemoryToPeripheral DMADirection = iota
	PeripheralToMemory
)

type DMAConfig struct {
	Direction DMADirection
	// Circular restarts the transfer from the beginning of the buffer
	// after every completion.
	Circular bool
}

// DMAEvents are invoked by a DMAChannel from interrupt context.
type DMAEvents struct {
	Complete     func()
	HalfComplete func()
	// Error is raised after the channel stopped; Remaining reports the
	// units left untransferred at the fault.
	Error func()
}

// DMAChannel moves bytes between memory and the peripheral data register.
type DMAChannel interface {
	Configure(DMAConfig) error
	SetEvents(DMAEvents)
	SetTransfer(buf []byte)
	Start() error
	// Abort stops the channel and returns the number of units it did not
	// transfer.
	Abort() int
	Remaining() int
}

// CallbackKind identifies an Engine event.
type CallbackKind uint8

const (
	CallbackTxComplete CallbackKind = iota
	CallbackRxComplete
	CallbackRxHalfComplete
	CallbackRxIdle
	CallbackError
	callbackKinds
)

func (k CallbackKind) String() string {
	switch k {
	case CallbackTxComplete:
		return "tx-complete"
	case CallbackRxComplete:
		return "rx-complete"
	case CallbackRxHalfComplete:
		return "rx-half-complete"
	case CallbackRxIdle:
		return "rx-idle"
	case CallbackError:
		return "error"
	default:
		return "invalid"
	}
}

// Callback is invoked without any Engine lock held, so it may start the
// next transfer.
type Callback func()
