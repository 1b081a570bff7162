package gen

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/frank/schema/field"
	"github.com/syssam/frank/schema/meta"
)

const (
	modelPkg = "github.com/syssam/frank/model"
	timePkg  = "time"
)

// accessor describes how the value of a semantic type is read.
type accessor struct {
	typ  func() *jen.Statement
	conv string // column.Value conversion method.
}

var accessors = map[field.Type]accessor{
	field.TypeString:     {jen.String, "String"},
	field.TypeText:       {jen.String, "String"},
	field.TypeJSON:       {jen.String, "String"},
	field.TypeInt:        {jen.Int64, "Int"},
	field.TypeIdentity:   {jen.Int64, "Int"},
	field.TypeForeignKey: {jen.Int64, "Int"},
	field.TypeFloat:      {jen.Float64, "Float"},
	field.TypeBool:       {jen.Bool, "Bool"},
	field.TypeTime:       {func() *jen.Statement { return jen.Qual(timePkg, "Time") }, "Time"},
}

// NewFile returns the accessor file of the record type described by m.
func NewFile(c *Config, m *meta.Meta) (*jen.File, error) {
	name := pascal(m.Name())
	if !token.IsIdentifier(name) {
		return nil, &GenerationError{Type: m.Name(), Cause: fmt.Errorf("type name %q is not a valid identifier", m.Name())}
	}
	f := jen.NewFile(c.Package)
	if c.Header != "" {
		f.HeaderComment(c.Header)
	}
	f.ImportName(modelPkg, "model")
	g := &typeGen{
		file:    f,
		meta:    m,
		name:    name,
		recv:    strings.ToLower(name[:1]),
		methods: map[string]string{"Record": "the embedded record"},
	}
	g.constants()
	g.wrapper()
	for _, d := range m.Columns() {
		if err := g.column(d); err != nil {
			return nil, err
		}
	}
	for _, d := range m.BuiltIns() {
		if err := g.getter(d); err != nil {
			return nil, err
		}
	}
	return f, nil
}

type typeGen struct {
	file    *jen.File
	meta    *meta.Meta
	name    string
	recv    string
	methods map[string]string // method name to declaring column.
}

func (g *typeGen) constants() {
	g.file.Commentf("Table and column names of %s records.", g.name)
	g.file.Const().DefsFunc(func(grp *jen.Group) {
		grp.Id(g.name + "Table").Op("=").Lit(g.meta.Table())
		for _, col := range g.meta.SelectColumns() {
			grp.Id(g.name + "Column" + pascal(col)).Op("=").Lit(col)
		}
	})
}

func (g *typeGen) wrapper() {
	g.file.Commentf("%s is a typed view of a %s record.", g.name, g.meta.Table())
	g.file.Type().Id(g.name).Struct(jen.Op("*").Qual(modelPkg, "Record"))

	g.file.Commentf("As%s returns the typed view of r.", g.name)
	g.file.Func().Id("As"+g.name).Params(jen.Id("r").Op("*").Qual(modelPkg, "Record")).Id(g.name).Block(
		jen.Return(jen.Id(g.name).Values(jen.Dict{jen.Id("Record"): jen.Id("r")})),
	)
}

// declare reserves a method name for column col.
func (g *typeGen) declare(name, col string) error {
	if other, ok := g.methods[name]; ok {
		return &GenerationError{Type: g.name, Cause: fmt.Errorf("method %s of column %q collides with %s", name, col, other)}
	}
	g.methods[name] = fmt.Sprintf("column %q", col)
	return nil
}

func (g *typeGen) method(name string) *jen.Statement {
	return g.file.Func().Params(jen.Id(g.recv).Id(g.name)).Id(name)
}

// record refers to the embedded record, which generated methods may shadow.
func (g *typeGen) record() *jen.Statement {
	return jen.Id(g.recv).Dot("Record")
}

func (g *typeGen) getter(d *field.Descriptor) error {
	acc, ok := accessors[d.Type]
	if !ok {
		return &GenerationError{Type: g.name, Cause: fmt.Errorf("column %q has unsupported type %s", d.Name, d.Type)}
	}
	method := pascal(d.Name)
	if d.IsForeignKey() {
		method = pascal(d.Column())
	}
	if err := g.declare(method, d.Name); err != nil {
		return err
	}
	g.file.Commentf("%s returns the value of the %s column.", method, d.Column())
	g.method(method).Params().Add(acc.typ()).Block(
		jen.Return(g.record().Dot("Field").Call(jen.Lit(d.Name)).Dot(acc.conv).Call()),
	)
	return nil
}

func (g *typeGen) column(d *field.Descriptor) error {
	if err := g.getter(d); err != nil {
		return err
	}
	switch {
	case d.IsForeignKey():
		method := "Set" + pascal(d.Column())
		if err := g.declare(method, d.Name); err != nil {
			return err
		}
		g.file.Commentf("%s associates the record with the %s row of the given identity.", method, d.To)
		g.method(method).Params(jen.Id("ctx").Qual("context", "Context"), jen.Id("id").Int64()).Error().Block(
			jen.Return(g.record().Dot("SetForeignID").Call(jen.Id("ctx"), jen.Lit(d.Name), jen.Id("id"))),
		)
		return nil
	case d.Type == field.TypeJSON:
		key := pascal(d.Name) + "Key"
		if err := g.declare(key, d.Name); err != nil {
			return err
		}
		if err := g.declare("Set"+key, d.Name); err != nil {
			return err
		}
		g.file.Commentf("%s returns the value at key of the %s column.", key, d.Name)
		g.method(key).Params(jen.Id("key").String()).Params(jen.Any(), jen.Error()).Block(
			jen.Return(g.record().Dot("Field").Call(jen.Lit(d.Name)).Dot("GetKey").Call(jen.Id("key"))),
		)
		g.file.Commentf("Set%s sets key of the %s column to value.", key, d.Name)
		g.method("Set"+key).Params(jen.Id("key").String(), jen.Id("value").Any()).Error().Block(
			jen.Return(g.record().Dot("Field").Call(jen.Lit(d.Name)).Dot("SetKey").Call(jen.Id("key"), jen.Id("value"))),
		)
	}
	method := "Set" + pascal(d.Name)
	if err := g.declare(method, d.Name); err != nil {
		return err
	}
	param := accessors[d.Type].typ()
	if d.Type == field.TypeJSON {
		param = jen.Any()
	}
	g.file.Commentf("%s sets the value of the %s column.", method, d.Name)
	g.method(method).Params(jen.Id("value").Add(param)).Error().Block(
		jen.Return(g.record().Dot("Set").Call(jen.Lit(d.Name), jen.Id("value"))),
	)
	return nil
}
