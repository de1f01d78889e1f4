package rewrite

import (
	"github.com/kkyr/gitrewrite/gitstore"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// RebindRefs re-anchors every reference GraphBuilder captured in RefTable
// onto its mapped new commit (spec.md §4.5). It must run only after
// scheduling has completed successfully, so that OldToNew is total over
// RefTable's values; ErrRefMissingMapping otherwise indicates an engine
// bug, not a user error.
func RebindRefs(store gitstore.ObjectStore, graph GraphStore, log logrus.FieldLogger) error {
	refs, err := graph.Refs()
	if err != nil {
		return err
	}

	for _, ref := range refs {
		newID, ok, err := graph.Mapping(ref.Old)
		if err != nil {
			return err
		}
		if !ok {
			return errors.Wrapf(ErrRefMissingMapping, "ref %s -> %s", ref.Name, ref.Old)
		}

		if err := store.SetReference(ref.Name, newID); err != nil {
			return errors.Wrapf(err, "failed to rebind %s", ref.Name)
		}

		if log != nil {
			log.WithFields(logrus.Fields{
				"ref": ref.Name.String(),
				"old": ref.Old.String(),
				"new": newID.String(),
			}).Info("rebound reference")
		}
	}

	return nil
}
