package modutok

import (
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const dirCreationPerm = 0o755

// Manifest is the on-disk form of config.yaml (spec.md §6): the descriptor
// list with paths rewritten to bare filenames, plus the two ID ceilings.
type Manifest struct {
	TokenizersInfo     []SubTokenizerDescriptor `yaml:"tokenizers_info"`
	MaxPossibleTokenID *uint32                  `yaml:"max_possible_token_id,omitempty"`
	MaxSpecialTokenID  *uint32                  `yaml:"max_special_token_id,omitempty"`
}

// Save writes every sub-tokenizer's adapted JSON plus one config.yaml
// manifest to dir, per spec.md §4.9. Writes are atomic (temp file, then
// rename) and guarded by a directory-scoped file lock so two concurrent
// Save calls against the same directory cannot interleave.
func (t *Tokenizer) Save(dir string) error {
	if err := os.MkdirAll(dir, dirCreationPerm); err != nil {
		return errors.Wrapf(err, "failed to create directory %q", dir)
	}

	lockPath := filepath.Join(dir, ".modutok.lock")
	return execOnFileLock(lockPath, func() error {
		manifest := Manifest{
			MaxPossibleTokenID: t.maxPossibleTokenID,
			MaxSpecialTokenID:  t.maxSpecialTokenID,
		}

		for _, sub := range t.subs {
			basename := filepath.Base(sub.descriptor.ModularJSONPath)
			if basename == "" || basename == "." {
				basename = sub.descriptor.Name + ".json"
			}
			content, err := marshalDoc(sub.doc)
			if err != nil {
				return err
			}
			if err := atomicWriteFile(filepath.Join(dir, basename), content); err != nil {
				return err
			}

			descriptor := sub.descriptor
			descriptor.ModularJSONPath = basename
			if descriptor.JSONPath != "" {
				descriptor.JSONPath = filepath.Base(descriptor.JSONPath)
			}
			manifest.TokenizersInfo = append(manifest.TokenizersInfo, descriptor)
		}

		manifestBytes, err := yaml.Marshal(manifest)
		if err != nil {
			return errors.Wrap(err, "failed to marshal config.yaml")
		}
		return atomicWriteFile(filepath.Join(dir, "config.yaml"), manifestBytes)
	})
}

// Load reads dir/config.yaml, rewrites every descriptor's paths to live
// under dir, and assembles the tokenizer via the Assembler's load-adjusted
// path (spec.md §4.9).
func Load(dir string) (*Tokenizer, error) {
	return LoadWithEngine(dir, nil)
}

// LoadWithEngine is Load with an overridden engine constructor, for tests.
func LoadWithEngine(dir string, ctor EngineConstructor) (*Tokenizer, error) {
	manifestPath := filepath.Join(dir, "config.yaml")
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest %q", manifestPath)
	}
	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, errors.Wrapf(err, "failed to parse manifest %q", manifestPath)
	}

	descriptors := make([]SubTokenizerDescriptor, len(manifest.TokenizersInfo))
	for i, d := range manifest.TokenizersInfo {
		d.ModularJSONPath = filepath.Join(dir, filepath.Base(d.ModularJSONPath))
		if d.JSONPath != "" {
			d.JSONPath = filepath.Join(dir, filepath.Base(d.JSONPath))
		}
		descriptors[i] = d
	}

	return New(AssemblerConfig{
		TokenizerDescriptors: descriptors,
		LoadAdjusted:         true,
		MaxPossibleTokenID:   manifest.MaxPossibleTokenID,
		MaxSpecialTokenID:    manifest.MaxSpecialTokenID,
		EngineConstructor:    ctor,
	})
}

// FromFile loads a tokenizer from a manifest directory. It is the exported
// entry point spec.md §6 calls from_file; path must name a directory
// containing a config.yaml previously written by Save.
func FromFile(pathOrDir string) (*Tokenizer, error) {
	info, err := os.Stat(pathOrDir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to stat %q", pathOrDir)
	}
	if !info.IsDir() {
		return nil, newUnsupportedError("from_file on a single tokenizer JSON file (expected a manifest directory)")
	}
	return Load(pathOrDir)
}

// atomicWriteFile writes content to a <name>.<uuid>.tmp sibling of path and
// renames it into place, so a crash mid-write never leaves a torn file
// behind for a later Load to choke on.
func atomicWriteFile(target string, content []byte) error {
	tmpPath := target + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		return errors.Wrapf(err, "failed to write temporary file %q", tmpPath)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return errors.Wrapf(err, "failed to move %q to %q", tmpPath, target)
	}
	return nil
}

// execOnFileLock opens lockPath (creating it if needed), locks it, runs fn,
// and unlocks on return. It polls with a 1-2s period if another process
// already holds the lock.
func execOnFileLock(lockPath string, fn func() error) (err error) {
	fileLock := flock.New(lockPath)
	for {
		locked, lockErr := fileLock.TryLock()
		if lockErr != nil {
			return errors.Wrapf(lockErr, "while trying to lock %q", lockPath)
		}
		if locked {
			break
		}
		time.Sleep(time.Millisecond * time.Duration(1000+rand.Intn(1000)))
	}

	defer func() {
		if unlockErr := fileLock.Unlock(); unlockErr != nil && err == nil {
			err = errors.Wrapf(unlockErr, "unlocking file %q", lockPath)
		}
	}()

	err = fn()
	return
}
