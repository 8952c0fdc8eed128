package spd2010

// Action is the branch the command sequencer takes for one status read.
type Action uint8

const (
	ActionNone   Action = iota // nothing matched; interrupt left asserted
	ActionBoot                 // boot ROM: clear-int, cpu-start
	ActionArm                  // booted, not sampling: point-mode, start, clear-int
	ActionAck                  // running, nothing pending: clear-int
	ActionReport               // point or gesture data: assemble, clear-int
	ActionAux                  // running, aux event: clear-int
	actionCount
)

func (a Action) String() string {
	switch a {
	case ActionBoot:
		return "boot"
	case ActionArm:
		return "arm"
	case ActionAck:
		return "ack"
	case ActionReport:
		return "report"
	case ActionAux:
		return "aux"
	default:
		return "none"
	}
}

// Plan selects the branch for s. The order is the controller's recovery
// order (boot, arm, idle-clear, data, aux) and the first match wins.
func Plan(s Status) Action {
	switch {
	case s.InBIOS:
		return ActionBoot
	case s.InCPU:
		return ActionArm
	case s.CPURunning && s.ReadLen == 0:
		return ActionAck
	case s.PointExists || s.Gesture:
		return ActionReport
	case s.CPURunning && s.Aux:
		return ActionAux
	default:
		return ActionNone
	}
}

// Command sequences per action. ActionReport's trailing clear-int is issued
// by Cycle once the report is assembled.
var sequences = [actionCount][]command{
	ActionBoot: {cmdClearInt, cmdCPUStart},
	ActionArm:  {cmdPointMode, cmdStart, cmdClearInt},
	ActionAck:  {cmdClearInt},
	ActionAux:  {cmdClearInt},
}

// Cycle runs one decode-and-act cycle regardless of the edge latch. A failed
// transfer aborts the rest of the branch; nothing is retried within the cycle
// and a previously published report stays visible.
func (d *Device) Cycle() error {
	d.stats.Cycles++
	err := d.cycle()
	if err != nil {
		d.stats.Failures++
	}
	return err
}

func (d *Device) cycle() error {
	st, err := d.ReadStatus()
	if err != nil {
		return err
	}
	act := Plan(st)
	d.stats.Actions[act]++

	if act == ActionReport {
		rpt, err := d.assemble(st)
		if err != nil {
			return err
		}
		d.buf.Publish(rpt)
		d.stats.Reports++
		return d.writeCmd(cmdClearInt)
	}
	for _, c := range sequences[act] {
		if err := d.writeCmd(c); err != nil {
			return err
		}
	}
	return nil
}
