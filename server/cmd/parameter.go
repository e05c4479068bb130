package cmd

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Varargs is a parameter type that takes every argument left on the command line.
type Varargs string

// SubCommand is a parameter type that only accepts an argument equal to the name of the field, or the name in its
// `cmd` tag. It is used to select a runnable of a Command with more than one.
type SubCommand struct{}

var (
	varargsType    = reflect.TypeOf(Varargs(""))
	subCommandType = reflect.TypeOf(SubCommand{})
)

// parameter describes a single exported field of a Runnable.
type parameter struct {
	name     string
	optional bool
}

func parameterOf(f reflect.StructField) parameter {
	p := parameter{name: strings.ToLower(f.Name)}
	tag, ok := f.Tag.Lookup("cmd")
	if !ok {
		return p
	}
	name, opts, _ := strings.Cut(tag, ",")
	if name != "" {
		p.name = name
	}
	p.optional = opts == "optional"
	return p
}

// verifyParameters checks if every exported field of t has a type that parseParameters can fill.
func verifyParameters(t reflect.Type) error {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		switch f.Type {
		case varargsType, subCommandType:
			continue
		}
		switch f.Type.Kind() {
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.String, reflect.Bool:
		default:
			return fmt.Errorf("parameter %v has unsupported type %v", f.Name, f.Type)
		}
	}
	return nil
}

// parseParameters fills the exported fields of v with the arguments passed.
func parseParameters(v reflect.Value, args []string) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		p := parameterOf(f)
		if f.Type == varargsType {
			v.Field(i).SetString(strings.Join(args, " "))
			args = nil
			continue
		}
		if len(args) == 0 {
			if p.optional {
				continue
			}
			return fmt.Errorf("missing parameter %v", p.name)
		}
		arg := args[0]
		args = args[1:]

		field := v.Field(i)
		switch {
		case f.Type == subCommandType:
			if arg != p.name {
				return fmt.Errorf("unknown sub command %v", arg)
			}
		case field.Kind() == reflect.String:
			field.SetString(arg)
		case field.Kind() == reflect.Bool:
			b, err := strconv.ParseBool(arg)
			if err != nil {
				return fmt.Errorf("parameter %v: %q is not a boolean", p.name, arg)
			}
			field.SetBool(b)
		default:
			n, err := strconv.ParseInt(arg, 10, field.Type().Bits())
			if err != nil {
				return fmt.Errorf("parameter %v: %q is not a valid number", p.name, arg)
			}
			field.SetInt(n)
		}
	}
	if len(args) > 0 {
		return errors.New("too many arguments")
	}
	return nil
}

// usage returns the parameters of t in the <name> [optional] format.
func usage(t reflect.Type) string {
	parts := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		p := parameterOf(f)
		switch {
		case f.Type == subCommandType:
			parts = append(parts, p.name)
		case p.optional || f.Type == varargsType:
			parts = append(parts, "["+p.name+"]")
		default:
			parts = append(parts, "<"+p.name+">")
		}
	}
	return strings.Join(parts, " ")
}
