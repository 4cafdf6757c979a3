package idl

import (
	"os"

	"github.com/gomlx/solmate/dtypes"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"k8s.io/klog/v2"
)

// ParseFile reads and parses the IDL at path.
func ParseFile(path string) (*IDL, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read IDL file %q", path)
	}
	spec, err := Parse(data)
	if err != nil {
		return nil, errors.WithMessagef(err, "IDL file %q", path)
	}
	klog.V(1).Infof("parsed IDL %q (%s v%s): %d types, %d accounts, %d instructions",
		path, spec.Name, spec.Version, len(spec.Types), len(spec.Accounts), len(spec.Instructions))
	return spec, nil
}

// Parse parses an IDL from its JSON encoding. Unknown keys are ignored; missing optional sections
// are left empty.
func Parse(data []byte) (*IDL, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON in IDL")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, errors.Errorf("IDL must be a JSON object, got %s", root.Type)
	}
	spec := &IDL{
		Version: root.Get("version").String(),
		Name:    root.Get("name").String(),
		Docs:    parseDocs(root.Get("docs")),
	}
	if spec.Name == "" {
		// Newer IDLs move name and version under "metadata".
		spec.Name = root.Get("metadata.name").String()
		if spec.Version == "" {
			spec.Version = root.Get("metadata.version").String()
		}
	}
	if spec.Name == "" {
		return nil, errors.New("IDL is missing the program \"name\"")
	}
	if metadata, ok := root.Get("metadata").Value().(map[string]any); ok {
		spec.Metadata = metadata
	}
	if address := root.Get("address"); address.Exists() && spec.Address() == "" {
		if spec.Metadata == nil {
			spec.Metadata = make(map[string]any)
		}
		spec.Metadata["address"] = address.String()
	}

	err := eachItem(root.Get("constants"), "constant", func(item gjson.Result) error {
		c, err := parseConst(item)
		spec.Constants = append(spec.Constants, c)
		return err
	})
	if err == nil {
		err = eachItem(root.Get("instructions"), "instruction", func(item gjson.Result) error {
			ix, err := parseInstruction(item)
			spec.Instructions = append(spec.Instructions, ix)
			return err
		})
	}
	if err == nil {
		err = eachItem(root.Get("accounts"), "account", func(item gjson.Result) error {
			def, err := parseTypeDef(item)
			spec.Accounts = append(spec.Accounts, def)
			return err
		})
	}
	if err == nil {
		err = eachItem(root.Get("types"), "type", func(item gjson.Result) error {
			def, err := parseTypeDef(item)
			spec.Types = append(spec.Types, def)
			return err
		})
	}
	if err == nil {
		err = eachItem(root.Get("events"), "event", func(item gjson.Result) error {
			ev, err := parseEvent(item)
			spec.Events = append(spec.Events, ev)
			return err
		})
	}
	if err == nil {
		err = eachItem(root.Get("errors"), "error", func(item gjson.Result) error {
			spec.Errors = append(spec.Errors, ErrorCode{
				Code: int(item.Get("code").Int()),
				Name: item.Get("name").String(),
				Msg:  item.Get("msg").String(),
			})
			return nil
		})
	}
	if err == nil {
		if state := root.Get("state"); state.IsObject() {
			spec.State, err = parseState(state)
		}
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "program %q", spec.Name)
	}
	return spec, nil
}

// eachItem calls fn for every element of the JSON array r. A missing or null r is an empty list.
func eachItem(r gjson.Result, what string, fn func(item gjson.Result) error) error {
	if !r.Exists() || r.Type == gjson.Null {
		return nil
	}
	if !r.IsArray() {
		return errors.Errorf("%ss must be a JSON array, got %s", what, r.Raw)
	}
	for ii, item := range r.Array() {
		if err := fn(item); err != nil {
			name := item.Get("name").String()
			if name == "" {
				return errors.WithMessagef(err, "%s #%d", what, ii)
			}
			return errors.WithMessagef(err, "%s %q", what, name)
		}
	}
	return nil
}

func parseDocs(r gjson.Result) []string {
	if !r.IsArray() {
		return nil
	}
	docs := make([]string, 0, len(r.Array()))
	for _, line := range r.Array() {
		docs = append(docs, line.String())
	}
	return docs
}

// parseType converts the JSON encoding of a type: either a primitive name ("u64") or an object with
// exactly one of the keys "defined", "option", "coption", "vec" or "array".
func parseType(r gjson.Result) (*Type, error) {
	if r.Type == gjson.String {
		dtype := dtypes.FromName(r.Str)
		if dtype == dtypes.Invalid {
			return nil, errors.Errorf("unknown primitive type %q", r.Str)
		}
		return Primitive(dtype), nil
	}
	if !r.IsObject() {
		return nil, errors.Errorf("invalid type %s", r.Raw)
	}

	if defined := r.Get("defined"); defined.Exists() {
		name := defined.String()
		if defined.IsObject() {
			name = defined.Get("name").String()
		}
		if name == "" {
			return nil, errors.Errorf("defined type without a name: %s", r.Raw)
		}
		return Defined(name), nil
	}

	for _, wrapper := range []struct {
		key  string
		kind TypeKind
	}{{"option", KindOption}, {"coption", KindCOption}, {"vec", KindVec}} {
		inner := r.Get(wrapper.key)
		if !inner.Exists() {
			continue
		}
		elem, err := parseType(inner)
		if err != nil {
			return nil, errors.WithMessagef(err, "in %s", wrapper.key)
		}
		return &Type{Kind: wrapper.kind, Elem: elem}, nil
	}

	if array := r.Get("array"); array.Exists() {
		items := array.Array()
		if !array.IsArray() || len(items) != 2 || items[1].Type != gjson.Number {
			return nil, errors.Errorf("array type must be [type, length], got %s", array.Raw)
		}
		elem, err := parseType(items[0])
		if err != nil {
			return nil, errors.WithMessage(err, "in array")
		}
		n := int(items[1].Int())
		if n < 0 {
			return nil, errors.Errorf("negative array length %d", n)
		}
		return ArrayOf(elem, n), nil
	}
	return nil, errors.Errorf("unsupported type %s", r.Raw)
}

func parseField(r gjson.Result) (Field, error) {
	field := Field{Name: r.Get("name").String(), Docs: parseDocs(r.Get("docs"))}
	if field.Name == "" {
		return field, errors.Errorf("field without a name: %s", r.Raw)
	}
	var err error
	field.Type, err = parseType(r.Get("type"))
	return field, err
}

func parseFields(r gjson.Result) ([]Field, error) {
	var fields []Field
	err := eachItem(r, "field", func(item gjson.Result) error {
		field, err := parseField(item)
		fields = append(fields, field)
		return err
	})
	return fields, err
}

func parseTypeDef(r gjson.Result) (TypeDef, error) {
	def := TypeDef{Name: r.Get("name").String(), Docs: parseDocs(r.Get("docs"))}
	if def.Name == "" {
		return def, errors.Errorf("type definition without a name: %s", r.Raw)
	}
	ty := r.Get("type")
	var err error
	switch kind := ty.Get("kind").String(); kind {
	case "struct":
		def.Kind = DefStruct
		def.Fields, err = parseFields(ty.Get("fields"))
	case "enum":
		def.Kind = DefEnum
		err = eachItem(ty.Get("variants"), "variant", func(item gjson.Result) error {
			variant, err := parseVariant(item)
			def.Variants = append(def.Variants, variant)
			return err
		})
	default:
		err = errors.Errorf("unsupported type definition kind %q", kind)
	}
	return def, err
}

// parseVariant decides, once, the payload shape of an enum variant: absent or empty fields make a
// unit variant, objects with a "name" make named fields and anything else makes positional fields.
func parseVariant(r gjson.Result) (EnumVariant, error) {
	variant := EnumVariant{Name: r.Get("name").String()}
	if variant.Name == "" {
		return variant, errors.Errorf("enum variant without a name: %s", r.Raw)
	}
	fields := r.Get("fields")
	if !fields.IsArray() || len(fields.Array()) == 0 {
		variant.Kind = FieldsNone
		return variant, nil
	}
	first := fields.Array()[0]
	var err error
	if first.IsObject() && first.Get("name").Exists() {
		variant.Kind = FieldsNamed
		variant.Named, err = parseFields(fields)
		return variant, err
	}
	variant.Kind = FieldsTuple
	for ii, item := range fields.Array() {
		var t *Type
		t, err = parseType(item)
		if err != nil {
			return variant, errors.WithMessagef(err, "tuple field #%d", ii)
		}
		variant.Tuple = append(variant.Tuple, t)
	}
	return variant, nil
}

// parseAccountItem tells groups (which have an "accounts" list) from single accounts.
func parseAccountItem(r gjson.Result) (AccountItem, error) {
	if accounts := r.Get("accounts"); accounts.Exists() {
		group := &AccountGroup{Name: r.Get("name").String()}
		err := eachItem(accounts, "account", func(item gjson.Result) error {
			child, err := parseAccountItem(item)
			group.Accounts = append(group.Accounts, child)
			return err
		})
		return AccountItem{Group: group}, err
	}
	account := &Account{
		Name:       r.Get("name").String(),
		Docs:       parseDocs(r.Get("docs")),
		IsMut:      r.Get("isMut").Bool() || r.Get("writable").Bool(),
		IsSigner:   r.Get("isSigner").Bool() || r.Get("signer").Bool(),
		IsOptional: r.Get("isOptional").Bool() || r.Get("optional").Bool(),
	}
	if account.Name == "" {
		return AccountItem{}, errors.Errorf("account without a name: %s", r.Raw)
	}
	if metadata, ok := r.Get("metadata").Value().(map[string]any); ok {
		account.Metadata = metadata
	}
	return AccountItem{Account: account}, nil
}

func parseInstruction(r gjson.Result) (Instruction, error) {
	ix := Instruction{Name: r.Get("name").String(), Docs: parseDocs(r.Get("docs"))}
	if ix.Name == "" {
		return ix, errors.Errorf("instruction without a name: %s", r.Raw)
	}
	err := eachItem(r.Get("accounts"), "account", func(item gjson.Result) error {
		account, err := parseAccountItem(item)
		ix.Accounts = append(ix.Accounts, account)
		return err
	})
	if err != nil {
		return ix, err
	}
	ix.Args, err = parseFields(r.Get("args"))
	return ix, err
}

func parseConst(r gjson.Result) (Const, error) {
	c := Const{Name: r.Get("name").String(), Value: r.Get("value").String()}
	if c.Name == "" {
		return c, errors.Errorf("constant without a name: %s", r.Raw)
	}
	var err error
	c.Type, err = parseType(r.Get("type"))
	return c, err
}

func parseEvent(r gjson.Result) (Event, error) {
	ev := Event{Name: r.Get("name").String()}
	err := eachItem(r.Get("fields"), "field", func(item gjson.Result) error {
		field, err := parseField(item)
		ev.Fields = append(ev.Fields, EventField{Field: field, Index: item.Get("index").Bool()})
		return err
	})
	return ev, err
}

func parseState(r gjson.Result) (*State, error) {
	state := &State{}
	var err error
	state.Struct, err = parseTypeDef(r.Get("struct"))
	if err != nil {
		return nil, errors.WithMessage(err, "state struct")
	}
	err = eachItem(r.Get("methods"), "state method", func(item gjson.Result) error {
		ix, err := parseInstruction(item)
		state.Methods = append(state.Methods, ix)
		return err
	})
	if err != nil {
		return nil, err
	}
	return state, nil
}
