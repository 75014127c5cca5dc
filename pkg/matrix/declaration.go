package matrix

import (
	"os"
	"path/filepath"

	"github.com/matzehuels/tav/pkg/errors"
	"github.com/matzehuels/tav/pkg/meta"
)

// DeclarationFile is the name of the per-folder declaration.
const DeclarationFile = ".tav.yml"

// LoadDeclaration reads and validates folder/.tav.yml.
func LoadDeclaration(folder string) (meta.Declaration, error) {
	path := filepath.Join(folder, DeclarationFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return meta.Declaration{}, errors.New(errors.ErrCodeInvalidPath, "%s: no %s found", folder, DeclarationFile)
		}
		return meta.Declaration{}, errors.Wrap(errors.ErrCodeInvalidPath, err, "read %s", path)
	}
	return meta.ParseDeclaration(folder, data)
}

// LoadDeclarations loads every folder in order, stopping at the first error.
func LoadDeclarations(folders []string) ([]meta.Declaration, error) {
	decls := make([]meta.Declaration, 0, len(folders))
	for _, f := range folders {
		d, err := LoadDeclaration(f)
		if err != nil {
			return nil, err
		}
		decls = append(decls, d)
	}
	return decls, nil
}
