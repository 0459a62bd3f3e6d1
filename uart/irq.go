package uart

// IRQHandler services the peripheral interrupt. Conditions are handled in a
// fixed order: errors of a DMA reception, idle line, receive-ready,
// transmit-empty and transmit-complete. Each one is gated by its enable bit.
// A receive-ready unit ends the invocation.
func (e *Engine) IRQHandler() {
	e.run(e.serviceErrors())
	e.run(e.serviceIdle())

	if cb, handled := e.serviceRxne(); handled {
		e.run(cb)
		return
	}

	e.serviceTxe()
	e.run(e.serviceTc())
}

func (e *Engine) run(cb Callback) {
	if cb != nil {
		cb()
	}
}

// callback must be called with e.mu held.
func (e *Engine) callback(kind CallbackKind) Callback {
	return e.callbacks[kind]
}

func (e *Engine) serviceErrors() Callback {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.regs.Status()
	if st&statusErrors == 0 || !e.regs.DMAEnabled(DirectionRx) {
		return nil
	}

	code := ErrorNone
	ack := Status(0)
	if st&StatusPE != 0 && e.regs.InterruptEnabled(InterruptPE) {
		code |= ErrorParity
		ack |= StatusPE
	}
	if e.regs.InterruptEnabled(InterruptError) {
		if st&StatusNE != 0 {
			code |= ErrorNoise
			ack |= StatusNE
		}
		if st&StatusFE != 0 {
			code |= ErrorFraming
			ack |= StatusFE
		}
		if st&StatusORE != 0 {
			code |= ErrorOverrun
			ack |= StatusORE
		}
	}
	if ack != 0 {
		e.regs.ClearStatus(ack)
	}
	e.errCode |= code
	if !code.Fatal() {
		return nil
	}

	e.regs.DisableInterrupt(InterruptPE | InterruptError | InterruptIdle)
	e.regs.DisableDMA(DirectionRx)
	e.rxCount = e.rxDMA.Abort()
	e.rxState = stateReady
	e.logger.Debug("reception aborted", "error", code, "remaining", e.rxCount)
	return e.callback(CallbackError)
}

func (e *Engine) serviceIdle() Callback {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.regs.Status()&StatusIdle == 0 || !e.regs.InterruptEnabled(InterruptIdle) {
		return nil
	}
	e.regs.ClearStatus(StatusIdle)

	if e.regs.DMAEnabled(DirectionRx) {
		remaining := e.rxDMA.Remaining()
		if remaining == 0 || remaining >= e.rxSize {
			return nil
		}
		if !e.rxCircular {
			e.regs.DisableInterrupt(InterruptPE | InterruptError | InterruptIdle)
			e.regs.DisableDMA(DirectionRx)
			e.rxDMA.Abort()
			e.rxState = stateReady
		}
		e.rxCount = remaining
		return e.callback(CallbackRxIdle)
	}

	if e.rxState == stateInterrupt && e.rxCount < e.rxSize {
		e.regs.DisableInterrupt(InterruptIdle | InterruptRXNE)
		e.rxState = stateReady
		return e.callback(CallbackRxIdle)
	}
	return nil
}

func (e *Engine) serviceRxne() (Callback, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.regs.Status()&StatusRXNE == 0 || !e.regs.InterruptEnabled(InterruptRXNE) {
		return nil, false
	}
	if e.rxState != stateInterrupt {
		// Stale enable bit; drop the unit.
		e.regs.ReadData()
		e.regs.DisableInterrupt(InterruptRXNE)
		return nil, true
	}

	code := e.collectErrors(e.line.Parity)
	v := e.regs.ReadData()
	e.errCode |= code

	if code.Fatal() {
		e.regs.DisableInterrupt(InterruptRXNE | InterruptIdle)
		e.rxState = stateReady
		return e.callback(CallbackError), true
	}

	e.rxBuf[e.rxSize-e.rxCount] = maskUnit(v, e.line)
	e.rxCount--

	if e.rxCount == 0 {
		e.regs.DisableInterrupt(InterruptRXNE | InterruptIdle)
		e.rxState = stateReady
		return e.callback(CallbackRxComplete), true
	}
	return nil, true
}

func (e *Engine) serviceTxe() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.regs.Status()&StatusTXE == 0 || !e.regs.InterruptEnabled(InterruptTXE) {
		return
	}
	if e.txState != stateInterrupt || e.txCount == 0 {
		e.regs.DisableInterrupt(InterruptTXE)
		return
	}

	e.regs.WriteData(uint16(e.txBuf[e.txSize-e.txCount]))
	e.txCount--

	if e.txCount == 0 {
		e.regs.EnableInterrupt(InterruptTC)
		e.regs.DisableInterrupt(InterruptTXE)
	}
}

func (e *Engine) serviceTc() Callback {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.regs.Status()&StatusTC == 0 || !e.regs.InterruptEnabled(InterruptTC) {
		return nil
	}
	e.regs.DisableInterrupt(InterruptTC)
	e.regs.ClearStatus(StatusTC)
	e.txState = stateReady
	return e.callback(CallbackTxComplete)
}

func (e *Engine) txDMAComplete() {
	e.mu.Lock()
	e.txCount = 0
	if !e.txCircular {
		// The last unit is still in the shift register; finish on TC.
		e.regs.DisableDMA(DirectionTx)
		e.regs.EnableInterrupt(InterruptTC)
		e.mu.Unlock()
		return
	}
	cb := e.callback(CallbackTxComplete)
	e.mu.Unlock()
	e.run(cb)
}

func (e *Engine) txDMAError() {
	e.mu.Lock()
	e.errCode |= ErrorDMA
	e.txCount = e.txDMA.Remaining()
	e.regs.DisableDMA(DirectionTx)
	e.regs.DisableInterrupt(InterruptTC)
	e.txState = stateReady
	cb := e.callback(CallbackError)
	e.mu.Unlock()

	e.logger.Warn("transmit dma error", "remaining", e.RemainingTx())
	e.run(cb)
}

func (e *Engine) rxDMAComplete() {
	e.mu.Lock()
	e.rxCount = 0
	if !e.rxCircular {
		e.regs.DisableInterrupt(InterruptPE | InterruptError | InterruptIdle)
		e.regs.DisableDMA(DirectionRx)
		e.rxState = stateReady
	}
	cb := e.callback(CallbackRxComplete)
	e.mu.Unlock()
	e.run(cb)
}

func (e *Engine) rxDMAHalfComplete() {
	e.mu.Lock()
	cb := e.callback(CallbackRxHalfComplete)
	e.mu.Unlock()
	e.run(cb)
}

func (e *Engine) rxDMAError() {
	e.mu.Lock()
	e.errCode |= ErrorDMA
	e.rxCount = e.rxDMA.Remaining()
	e.regs.DisableInterrupt(InterruptPE | InterruptError | InterruptIdle)
	e.regs.DisableDMA(DirectionRx)
	e.rxState = stateReady
	cb := e.callback(CallbackError)
	remaining := e.rxCount
	e.mu.Unlock()

	e.logger.Warn("receive dma error", "remaining", remaining)
	e.run(cb)
}
