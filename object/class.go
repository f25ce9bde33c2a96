package object

import "github.com/thistle-lang/thistle/value"

// Field is one (name, value) entry in a class's method table or an
// instance's field table. Names are interned strings compared by
// pointer identity, per spec.md §3.
type Field struct {
	Name  *ObjString
	Value value.Value
}

// ObjClass is a user-defined class: its name and an ordered table of
// methods (typically *ObjFunction values, one of which may be named
// "constructor").
type ObjClass struct {
	value.Header
	Name    *ObjString
	Methods []Field
}

func (c *ObjClass) DisplayString() string { return "<object>" }

func NewClass(name *ObjString) *ObjClass {
	c := &ObjClass{Name: name}
	c.Type = value.ObjClassType
	return c
}

// Method looks up a method by interned name, returning (value, true) if
// present. Lookup is by pointer identity: name must itself come from the
// same intern table as the class's method names.
func (c *ObjClass) Method(name *ObjString) (value.Value, bool) {
	for _, f := range c.Methods {
		if f.Name == name {
			return f.Value, true
		}
	}
	return value.Value{}, false
}

// AddMethod installs or replaces a method by name.
func (c *ObjClass) AddMethod(name *ObjString, v value.Value) {
	for i, f := range c.Methods {
		if f.Name == name {
			c.Methods[i].Value = v
			return
		}
	}
	c.Methods = append(c.Methods, Field{Name: name, Value: v})
}

// ObjInstance is an instance of a class: a reference to its class plus a
// per-instance field table with the same (name, value) shape.
type ObjInstance struct {
	value.Header
	Class  *ObjClass
	Fields []Field
}

func (i *ObjInstance) DisplayString() string { return "<object>" }

func NewInstance(class *ObjClass) *ObjInstance {
	inst := &ObjInstance{Class: class}
	inst.Type = value.ObjInstanceType
	return inst
}

func (i *ObjInstance) Field(name *ObjString) (value.Value, bool) {
	for _, f := range i.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return value.Value{}, false
}

func (i *ObjInstance) SetField(name *ObjString, v value.Value) {
	for idx, f := range i.Fields {
		if f.Name == name {
			i.Fields[idx].Value = v
			return
		}
	}
	i.Fields = append(i.Fields, Field{Name: name, Value: v})
}

// ObjBoundMethod pairs a captured receiver with the method function read
// off it — produced when `obj.name` is evaluated without an immediate
// call (spec.md Glossary, "Bound method").
type ObjBoundMethod struct {
	value.Header
	Receiver value.Value
	Method   *ObjFunction
}

func (b *ObjBoundMethod) DisplayString() string { return "<object>" }

func NewBoundMethod(receiver value.Value, method *ObjFunction) *ObjBoundMethod {
	b := &ObjBoundMethod{Receiver: receiver, Method: method}
	b.Type = value.ObjBoundMethodType
	return b
}
