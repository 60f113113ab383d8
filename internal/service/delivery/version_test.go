package delivery

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/heraldhq/herald-api/internal/model"
)

func TestComputeVersionOrderIndependent(t *testing.T) {
	now := time.Now()
	a := &model.Announcement{Base: model.Base{ID: uuid.New(), UpdatedAt: now}}
	b := &model.Announcement{Base: model.Base{ID: uuid.New(), UpdatedAt: now.Add(time.Minute)}}
	th := &model.Theme{Base: model.Base{ID: uuid.New(), UpdatedAt: now}}

	v1 := computeVersion([]*model.Announcement{a, b}, []*model.Theme{th})
	v2 := computeVersion([]*model.Announcement{b, a}, []*model.Theme{th})
	assert.Equal(t, v1, v2)
	assert.Len(t, v1, 16)
}

func TestComputeVersionSensitiveToMembership(t *testing.T) {
	now := time.Now()
	a := &model.Announcement{Base: model.Base{ID: uuid.New(), UpdatedAt: now}}
	b := &model.Announcement{Base: model.Base{ID: uuid.New(), UpdatedAt: now}}

	with := computeVersion([]*model.Announcement{a, b}, nil)
	without := computeVersion([]*model.Announcement{a}, nil)
	assert.NotEqual(t, with, without)

	themed := computeVersion([]*model.Announcement{a}, []*model.Theme{{Base: model.Base{ID: uuid.New(), UpdatedAt: now}}})
	assert.NotEqual(t, without, themed)
}
