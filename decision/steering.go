package decision

import "github.com/milk9111/sentinel/navigation"

// Command is the motor intent derived from terrain for one tick.
type Command int

const (
	CmdMove Command = iota
	CmdStop
	CmdJump
	CmdAnalyze
	CmdClimb
	CmdVault
)

func (c Command) String() string {
	switch c {
	case CmdMove:
		return "move"
	case CmdStop:
		return "stop"
	case CmdJump:
		return "jump"
	case CmdAnalyze:
		return "analyze"
	case CmdClimb:
		return "climb"
	case CmdVault:
		return "vault"
	default:
		return "unknown"
	}
}

// PatrolStep maps the terrain ahead to a patrol intent. Droppable ledges are
// walked off; walls and deep ledges start an analyze pause.
func PatrolStep(kind navigation.Kind) Command {
	switch kind {
	case navigation.JumpableObstacle:
		return CmdJump
	case navigation.Wall, navigation.Ledge:
		return CmdAnalyze
	default:
		return CmdMove
	}
}

// ChaseStep maps the terrain ahead to a pursuit intent. wall is only read
// for Wall reports. Openings higher than vaultHeight, or ones that need a
// crouch, are climbed.
func ChaseStep(rep navigation.Report, wall navigation.WallReport, vaultHeight float64) Command {
	switch rep.Kind {
	case navigation.JumpableObstacle:
		return CmdJump
	case navigation.Ledge:
		return CmdStop
	case navigation.Wall:
		if !wall.CanTraverse() {
			return CmdStop
		}
		if wall.Opportunity.Crouch || wall.Opportunity.EntryHeight > vaultHeight {
			return CmdClimb
		}
		return CmdVault
	default:
		return CmdMove
	}
}
