package registry

import (
	"fmt"
	"sort"
	"strings"

	protoparserparser "github.com/yoheimuta/go-protoparser/v4/parser"

	"github.com/anirudhraja/tarslite/schema"
)

// Registry stores the schema of TARS records. We look this up when we
// need to parse or marshal a record by name.
type Registry struct {
	// SchemaDirectories are searched, in order, for schema files and
	// their imports.
	SchemaDirectories []string

	repo    *schema.Repo
	structs map[string]*schema.Struct // fully qualified name -> struct
	enums   map[string]*schema.Enum   // fully qualified name -> enum

	parsedProtoBody map[string]*protoparserparser.Proto
	fileEntities    map[string]*fileEntity
}

// fileEntity keeps per-file import edges discovered during the DFS.
type fileEntity struct {
	imports []string
}

// NewRegistry creates an empty registry that resolves schema files
// against dirs.
func NewRegistry(dirs []string) *Registry {
	return &Registry{
		SchemaDirectories: dirs,
		repo:              &schema.Repo{Files: make(map[string]*schema.File)},
		structs:           make(map[string]*schema.Struct),
		enums:             make(map[string]*schema.Enum),
		parsedProtoBody:   make(map[string]*protoparserparser.Proto),
		fileEntities:      make(map[string]*fileEntity),
	}
}

// LoadRepo registers schema definitions built in code.
func (r *Registry) LoadRepo(repo *schema.Repo) error {
	if repo == nil {
		return fmt.Errorf("nil repo")
	}
	for name, file := range repo.Files {
		r.repo.Files[name] = file
		r.registerNames(file)
	}
	return nil
}

// LoadSchemaFromFile parses a schema file and everything it imports,
// then registers and resolves every struct and enum they define.
func (r *Registry) LoadSchemaFromFile(schemaFile string) error {
	files, err := r.getAllProtoInfo(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to load schema %s: %w", schemaFile, err)
	}

	var pending []*pendingRef
	for _, path := range files {
		if _, loaded := r.repo.Files[path]; loaded {
			continue
		}
		file, refs, err := convertProto(path, r.parsedProtoBody[path])
		if err != nil {
			return fmt.Errorf("failed to convert %s: %w", path, err)
		}
		r.repo.Files[path] = file
		r.registerNames(file)
		pending = append(pending, refs...)
	}

	if err := r.resolveReferences(pending); err != nil {
		return fmt.Errorf("failed to resolve types in %s: %w", schemaFile, err)
	}
	return nil
}

// registerNames registers all struct and enum names of a file
func (r *Registry) registerNames(file *schema.File) {
	pkg := file.Package
	for _, st := range file.Structs {
		fullName := r.getFullName(pkg, st.Name)
		r.structs[fullName] = st
		r.registerNestedNames(fullName, st)
	}
	for _, enum := range file.Enums {
		r.enums[r.getFullName(pkg, enum.Name)] = enum
	}
}

// registerNestedNames registers nested struct and enum names
func (r *Registry) registerNestedNames(parentName string, st *schema.Struct) {
	for _, nested := range st.NestedStructs {
		nestedFullName := parentName + "." + nested.Name
		r.structs[nestedFullName] = nested
		r.registerNestedNames(nestedFullName, nested)
	}
	for _, nestedEnum := range st.NestedEnums {
		r.enums[parentName+"."+nestedEnum.Name] = nestedEnum
	}
}

// resolveReferences turns every named type reference into a fully
// qualified struct or enum reference.
func (r *Registry) resolveReferences(pending []*pendingRef) error {
	all := make(map[string]struct{}, len(r.structs)+len(r.enums))
	for name := range r.structs {
		all[name] = struct{}{}
	}
	for name := range r.enums {
		all[name] = struct{}{}
	}

	for _, ref := range pending {
		fullName, err := getReferencedType(ref.name, ref.scope, all)
		if err != nil {
			return err
		}
		if _, isEnum := r.enums[fullName]; isEnum {
			ref.target.Kind = schema.KindEnum
			ref.target.EnumType = fullName
			ref.target.StructType = ""
			continue
		}
		ref.target.Kind = schema.KindStruct
		ref.target.StructType = fullName
	}
	return nil
}

func (r *Registry) getFullName(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// GetStruct retrieves a struct definition by name
func (r *Registry) GetStruct(name string) (*schema.Struct, error) {
	if st, exists := r.structs[name]; exists {
		return st, nil
	}

	// Try without package prefix
	for _, fullName := range r.ListStructs() {
		if strings.HasSuffix(fullName, "."+name) {
			return r.structs[fullName], nil
		}
	}

	return nil, fmt.Errorf("struct not found: %s", name)
}

// GetEnum retrieves an enum definition by name
func (r *Registry) GetEnum(name string) (*schema.Enum, error) {
	if enum, exists := r.enums[name]; exists {
		return enum, nil
	}

	// Try without package prefix
	for _, fullName := range r.ListEnums() {
		if strings.HasSuffix(fullName, "."+name) {
			return r.enums[fullName], nil
		}
	}

	return nil, fmt.Errorf("enum not found: %s", name)
}

// ListStructs returns all registered struct names, sorted
func (r *Registry) ListStructs() []string {
	names := make([]string, 0, len(r.structs))
	for name := range r.structs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListEnums returns all registered enum names, sorted
func (r *Registry) ListEnums() []string {
	names := make([]string, 0, len(r.enums))
	for name := range r.enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Repo returns every loaded schema file.
func (r *Registry) Repo() *schema.Repo {
	return r.repo
}
