package abi

// Type describes a value that crosses the boundary.
type Type interface {
	Kind() Kind
	WireName() string
}

// Scalar is a fixed-width primitive passed by value.
type Scalar struct {
	K Kind
}

func (s Scalar) Kind() Kind       { return s.K }
func (s Scalar) WireName() string { return s.K.String() }

// String is guest text. Received strings are (ptr, len) views valid only for
// the duration of the call; returned strings are owned guest-heap buffers.
type String struct{}

func (String) Kind() Kind       { return KindString }
func (String) WireName() string { return "string" }

// Enum is a closed set of cases carried as a u32 discriminant. Enum results
// are always written through a return pointer, never returned by register,
// since the guest language's enum representation need not be bit-compatible.
type Enum struct {
	Name  string
	Cases []string
}

func (e *Enum) Kind() Kind       { return KindEnum }
func (e *Enum) WireName() string { return e.Name }

// Field is a named record member.
type Field struct {
	Name string
	Type Type
}

// Record is a fixed-layout aggregate laid out C-style in guest memory.
type Record struct {
	Name   string
	Fields []Field
}

func (r *Record) Kind() Kind       { return KindRecord }
func (r *Record) WireName() string { return r.Name }

// Seq is a contiguous run of fixed-layout elements.
type Seq struct {
	Elem Type
}

func (s *Seq) Kind() Kind       { return KindSeq }
func (s *Seq) WireName() string { return "seq<" + s.Elem.WireName() + ">" }

// Own is an owning handle to an opaque host resource. Dropping it runs the
// resource destructor.
type Own struct {
	Resource string
}

func (o Own) Kind() Kind       { return KindOwn }
func (o Own) WireName() string { return "own<" + o.Resource + ">" }

// Borrow is a non-owning handle. Dropping it never destroys the referent.
type Borrow struct {
	Resource string
}

func (b Borrow) Kind() Kind       { return KindBorrow }
func (b Borrow) WireName() string { return "borrow<" + b.Resource + ">" }

// Convenience singletons for the scalar kinds.
var (
	Bool = Scalar{KindBool}
	U8   = Scalar{KindU8}
	S8   = Scalar{KindS8}
	U16  = Scalar{KindU16}
	S16  = Scalar{KindS16}
	U32  = Scalar{KindU32}
	S32  = Scalar{KindS32}
	U64  = Scalar{KindU64}
	S64  = Scalar{KindS64}
	F32  = Scalar{KindF32}
	F64  = Scalar{KindF64}
	Char = Scalar{KindChar}
	Str  = String{}
)
