package meter

import "strings"

// MeterType is a bitmask of metering algorithms. The K, IEC1 and IEC2
// variants within one family share a single ballistics instance per
// channel; they differ only in display scale, which is a UI concern.
type MeterType uint32

const (
	MeterPeak MeterType = 1 << iota
	MeterKRMS
	MeterK20
	MeterK14
	MeterK12
	MeterIEC1DIN
	MeterIEC1NOR
	MeterIEC2BBC
	MeterIEC2EBU
	MeterVU
	MeterMaxSignal
	MeterMaxPeak
)

// Family groupings: algorithms backed by the same ballistics instance.
const (
	familyK    = MeterKRMS | MeterK20 | MeterK14 | MeterK12
	familyKSys = MeterK20 | MeterK14 | MeterK12
	familyIEC1 = MeterIEC1DIN | MeterIEC1NOR
	familyIEC2 = MeterIEC2BBC | MeterIEC2EBU
)

var meterTypeNames = []struct {
	t    MeterType
	name string
}{
	{MeterPeak, "peak"},
	{MeterKRMS, "krms"},
	{MeterK20, "k20"},
	{MeterK14, "k14"},
	{MeterK12, "k12"},
	{MeterIEC1DIN, "iec1din"},
	{MeterIEC1NOR, "iec1nor"},
	{MeterIEC2BBC, "iec2bbc"},
	{MeterIEC2EBU, "iec2ebu"},
	{MeterVU, "vu"},
	{MeterMaxSignal, "maxsignal"},
	{MeterMaxPeak, "maxpeak"},
}

func (t MeterType) String() string {
	var parts []string
	for _, e := range meterTypeNames {
		if t&e.t != 0 {
			parts = append(parts, e.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}
