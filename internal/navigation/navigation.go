package navigation

import (
	"slices"

	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/models"
	"github.com/ahmetcoskunkizilkaya/medbook-client/internal/session"
)

type Screen string

const (
	Splash   Screen = "Splash"
	Login    Screen = "Login"
	Register Screen = "Register"

	Home         Screen = "Home"
	Appointments Screen = "Appointments"
	Dashboard    Screen = "Dashboard"
	Schedule     Screen = "Schedule"
	Profile      Screen = "Profile"
	Settings     Screen = "Settings"

	DoctorDetails       Screen = "DoctorDetails"
	BookAppointment     Screen = "BookAppointment"
	BookingSuccess      Screen = "BookingSuccess"
	Categories          Screen = "Categories"
	PrescriptionDetails Screen = "PrescriptionDetails"
	AddPrescription     Screen = "AddPrescription"
	PatientHistory      Screen = "PatientHistory"
)

type Flow string

const (
	FlowLoading Flow = "loading"
	FlowAuth    Flow = "auth"
	FlowMain    Flow = "main"
)

// Surface is what the presentation layer may show: the tab bar and the
// screens that can be pushed on top of it.
type Surface struct {
	Flow  Flow     `json:"flow"`
	Role  string   `json:"role,omitempty"`
	Tabs  []Screen `json:"tabs"`
	Stack []Screen `json:"stack"`
}

var (
	commonTabs  = []Screen{Profile, Settings}
	patientTabs = []Screen{Home, Appointments}
	doctorTabs  = []Screen{Dashboard, Schedule}

	// stacks maps a tab to the screens it can push.
	stacks = map[Screen][]Screen{
		Home:         {DoctorDetails, BookAppointment, BookingSuccess, Categories},
		Appointments: {PrescriptionDetails},
		Dashboard:    {AddPrescription, PatientHistory},
	}
)

// For returns the surface for a snapshot. A signed-in user whose role is
// neither patient nor doctor gets only Profile and Settings.
func For(snap session.Snapshot) Surface {
	switch snap.State {
	case session.StateUnknown:
		return Surface{Flow: FlowLoading, Tabs: []Screen{Splash}, Stack: []Screen{}}
	case session.StateUnauthenticated:
		return Surface{Flow: FlowAuth, Tabs: []Screen{Login, Register}, Stack: []Screen{}}
	}

	role := snap.Role()
	var tabs []Screen
	switch role {
	case models.RolePatient:
		tabs = append(tabs, patientTabs...)
	case models.RoleDoctor:
		tabs = append(tabs, doctorTabs...)
	}
	tabs = append(tabs, commonTabs...)

	stack := []Screen{}
	for _, tab := range tabs {
		stack = append(stack, stacks[tab]...)
	}
	return Surface{Flow: FlowMain, Role: string(role), Tabs: tabs, Stack: stack}
}

// Allows reports whether screen is reachable in the snapshot's surface.
func Allows(snap session.Snapshot, screen Screen) bool {
	surface := For(snap)
	return slices.Contains(surface.Tabs, screen) || slices.Contains(surface.Stack, screen)
}
