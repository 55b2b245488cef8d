package runtime

// Lifecycle is the closed set of system-wide phase notifications broadcast
// to every mounted actor that implements [LifecycleHandler].
//
// The mount sequence emits Initialize and then Start. Initialize is fully
// resolved across all actors before Start is delivered to any of them.
// Stop, Sleep and Hibernate are reserved and currently never emitted.
type Lifecycle int

const (
	// Initialize is delivered after mounting, before the supervisor loop starts.
	Initialize Lifecycle = iota
	// Start is delivered after every Initialize completion has resolved.
	Start
	// Stop is reserved.
	Stop
	// Sleep is reserved.
	Sleep
	// Hibernate is reserved.
	Hibernate
)

func (l Lifecycle) String() string {
	switch l {
	case Initialize:
		return "initialize"
	case Start:
		return "start"
	case Stop:
		return "stop"
	case Sleep:
		return "sleep"
	case Hibernate:
		return "hibernate"
	default:
		return "unknown"
	}
}
