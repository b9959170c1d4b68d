// kernel.go implements sampleForChannel, the per-sample convolution kernel:
// given the three borrowed frames and the current Q8.24 time cursor, it
// produces one output sample for one channel by convolving with the
// windowed sinc table. This is the only function on the hot path that
// touches frame data.

package resampler

// channelizeIndex maps a per-channel sample index to its offset in an
// interleaved buffer.
func channelizeIndex(i, channel, channelsNum int) int {
	return i*channelsNum + channel
}

// sincValue looks up the windowed sinc at Q8.24 position x with
// precomputed fractional part f, applying the decimation gain
// compensation the original divides by scaling for scaling > 1 so the
// filter's passband gain matches its gain at scaling == 1, the scaling
// the table was built for.
func (r *Resampler) sincValue(x fixed, f float32) float32 {
	v := r.sincTable.lookup(x, f)
	if r.scaling > 1.0 {
		return v / r.scaling
	}
	return v
}

// sampleForChannel produces one output sample for channel at the current
// qtSample cursor. The tap window spans [qtSample-qtHalfWindowLen,
// qtSample+qtHalfWindowLen] in input-time units relative to curr, and may
// cross into prev (negative side) or next (positive side).
func (r *Resampler) sampleForChannel(channel int) float32 {
	qws := r.qtWindowSize
	qhw := r.qtHalfWindowLen
	qtSample := r.qtSample
	channelLen := r.channelLen
	channelsNum := r.channelsNum

	var indBeginPrev int
	if qtSample >= qhw {
		indBeginPrev = channelLen
	} else {
		indBeginPrev = qceil(qtSample + qws - qhw).toSize()
	}
	indEndPrev := channelizeIndex(channelLen, channel, channelsNum)
	indBeginPrev = channelizeIndex(indBeginPrev, channel, channelsNum)

	var indBeginCur int
	if qtSample >= qhw {
		indBeginCur = qceil(qtSample - qhw).toSize()
	}
	indBeginCur = channelizeIndex(indBeginCur, channel, channelsNum)

	// When the window's right edge lands exactly on qws, the last tap is
	// next[0], not curr[channelLen], so equality takes the next-side path.
	var indEndCur int
	if qtSample+qhw >= qws {
		indEndCur = channelLen - 1
	} else {
		indEndCur = qfloor(qtSample + qhw).toSize()
	}
	indEndCur = channelizeIndex(indEndCur, channel, channelsNum)

	indBeginNext := channelizeIndex(0, channel, channelsNum)
	var indEndNext int
	if qtSample+qhw >= qws {
		indEndNext = qfloor(qtSample+qhw-qws).toSize() + 1
	}
	indEndNext = channelizeIndex(indEndNext, channel, channelsNum)

	// Starting tap position in the sinc table.
	qtCur := qws + qtSample - qceil(qws+qtSample-qhw)
	qtSincCur := mulShift(qtCur, r.qtSincStep)
	qtSincInc := r.qtSincStep

	fFract := fractional(qtSincCur << r.sincTable.windowInterpBits)

	var accumulator float32

	for i := indBeginPrev; i < indEndPrev; i += channelsNum {
		accumulator += r.prev[i] * r.sincValue(qtSincCur, fFract)
		qtSincCur -= qtSincInc
	}

	i := indBeginCur
	accumulator += r.curr[i] * r.sincValue(qtSincCur, fFract)
	for qtSincCur >= qtSincInc {
		i += channelsNum
		qtSincCur -= qtSincInc
		accumulator += r.curr[i] * r.sincValue(qtSincCur, fFract)
	}
	i += channelsNum

	// Origin reflection: the table only covers the positive half of the
	// (symmetric) sinc, so crossing zero just flips the remaining offset.
	qtSincCur = qtSincInc - qtSincCur
	fFract = fractional(qtSincCur << r.sincTable.windowInterpBits)

	for ; i <= indEndCur; i += channelsNum {
		accumulator += r.curr[i] * r.sincValue(qtSincCur, fFract)
		qtSincCur += qtSincInc
	}

	for i := indBeginNext; i < indEndNext; i += channelsNum {
		accumulator += r.next[i] * r.sincValue(qtSincCur, fFract)
		qtSincCur += qtSincInc
	}

	return accumulator
}
