// Package serial queues bytes between application code and a DMA driven
// serial peripheral.
//
// A Port owns one transmit and one receive RingBuffer. Transmission is
// chained from the transmit complete callback, one contiguous chunk at a
// time. Reception never stops: the receive DMA runs in circular mode over
// the whole receive buffer and the completion, half-completion and idle
// callbacks advance the producer index by whatever the hardware captured
// since the previous event.
package serial

//go:generate go tool mockgen -destination=mock_driver.go -package=serial . Driver

import "i4.energy/across/gsmlink/uart"

// Driver is the part of the peripheral engine a Port needs. *uart.Engine
// implements it.
type Driver interface {
	Setup(cfg uart.LineConfig) error
	SetupTxDMA(circular bool) error
	SetupRxDMA(circular bool) error
	RegisterCallback(kind uart.CallbackKind, fn uart.Callback) error
	TransmitDMA(p []byte) error
	ReceiveDMAToIdle(p []byte) error
	AbortReceive() error
	RemainingRx() int
	RemainingTx() int
	Receiving() bool
	Transmitting() bool
}

var _ Driver = (*uart.Engine)(nil)
