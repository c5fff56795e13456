package engine

// CommandKind tags the variant held by a Command. Modeled as a small enum
// + struct instead of Python-style duck-typed polymorphism (xwaykeyz's
// handle_commands() branches on isinstance checks against Combo/Key/
// Callable/Keymap/ComboHint at runtime; Go expresses the same dispatch as
// a switch over an explicit tag).
type CommandKind int

const (
	CmdCombo CommandKind = iota
	CmdKey
	CmdFunc
	CmdKeymap
	CmdHint
	// CmdList holds a recursively-executed list of Commands: spec.md §3's
	// Keymap right-hand side is "a single Command or a list", and §4.6
	// requires the executor to recurse over the list case.
	CmdList
)

// Hint is a sentinel command that alters executor behavior rather than
// producing output directly.
type Hint int

const (
	HintBind Hint = iota
	HintEscapeNextKey
	HintIgnoreKey
)

// Trigger tags a nested Keymap command. The executor currently treats both
// values the same way (see enterKeymap): the keymap is entered as soon as
// the command runs and is left once no key is held.
type Trigger int

const (
	// TriggerOnRelease is the default tag.
	TriggerOnRelease Trigger = iota
	// TriggerImmediately is accepted but behaves like TriggerOnRelease.
	TriggerImmediately
)

// Func is a user-supplied callback. It is invoked with the KeyContext if it
// declares a parameter, with no arguments otherwise — the Go equivalent of
// xwaykeyz's inspect.signature(command).parameters arity check, decided at
// registration time instead of via reflection on every call.
type Func struct {
	Name     string
	WithCtx  func(*KeyContext)
	NoArgs   func()
}

func (f Func) takesContext() bool { return f.WithCtx != nil }

func (f Func) invoke(kc *KeyContext) {
	if f.WithCtx != nil {
		f.WithCtx(kc)
		return
	}
	if f.NoArgs != nil {
		f.NoArgs()
	}
}

// Command is a tagged union: exactly one of the typed fields matching Kind
// is populated. Produced by the rules DSL (internal/rules) and consumed by
// the executor (executor.go).
type Command struct {
	Kind CommandKind

	Combo   Combo
	Key     Key
	Func    Func
	Keymap  *Keymap
	Trigger Trigger
	Hint    Hint
	List    []Command
}

func ComboCommand(c Combo) Command  { return Command{Kind: CmdCombo, Combo: c} }
func KeyCommand(k Key) Command      { return Command{Kind: CmdKey, Key: k} }
func FuncCommand(f Func) Command    { return Command{Kind: CmdFunc, Func: f} }
func KeymapCommand(k *Keymap, trig Trigger) Command {
	return Command{Kind: CmdKeymap, Keymap: k, Trigger: trig}
}
func HintCommand(h Hint) Command { return Command{Kind: CmdHint, Hint: h} }

// ListCommand binds several commands to a single combo, executed in order
// (spec.md §3/§4.6).
func ListCommand(cmds ...Command) Command {
	return Command{Kind: CmdList, List: cmds}
}
