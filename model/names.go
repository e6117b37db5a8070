package model

import "fmt"

func (p Position) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

func (ft FieldType) Name() string {
	switch ft {
	case FieldMain:
		return "MAIN"
	case FieldStack:
		return "STACK"
	case FieldDeployment:
		return "DEPLOYMENT"
	case FieldExit:
		return "EXIT"
	case FieldSpecial:
		return "SPECIAL"
	case FieldServer:
		return "SERVER"
	default:
		return fmt.Sprintf("n/a:%d", ft)
	}
}

// OnGrid reports whether cards move across fields of this type during turns.
func (ft FieldType) OnGrid() bool {
	return ft == FieldMain || ft == FieldDeployment || ft == FieldExit
}

func (k CardKind) Name() string {
	switch k {
	case KindUnknown:
		return "UNKNOWN"
	case KindLink:
		return "LINK"
	case KindVirus:
		return "VIRUS"
	case KindFirewall:
		return "FIREWALL"
	default:
		return fmt.Sprintf("n/a:%d", k)
	}
}

func (k CardKind) Letter() byte {
	switch k {
	case KindLink:
		return 'L'
	case KindVirus:
		return 'V'
	case KindFirewall:
		return 'F'
	default:
		return '?'
	}
}

func Opponent(player int) int {
	if player == 1 {
		return 2
	}
	return 1
}
