//go:build integration

package database

import (
	"context"
	"testing"
	"time"

	"github.com/princinho/shopitbackend/models"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

type UserStoreIntegrationTestSuite struct {
	suite.Suite
	ctx       context.Context
	container *mongodb.MongoDBContainer
	client    *mongo.Client
	store     *MongoUserStore
}

func (s *UserStoreIntegrationTestSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := mongodb.Run(s.ctx, "mongo:7")
	s.Require().NoError(err)
	s.container = container

	uri, err := container.ConnectionString(s.ctx)
	s.Require().NoError(err)

	client, err := Connect(s.ctx, uri, 10*time.Second)
	s.Require().NoError(err)
	s.client = client
}

func (s *UserStoreIntegrationTestSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Disconnect(s.ctx)
	}
	if err := testcontainers.TerminateContainer(s.container); err != nil {
		s.T().Logf("terminate mongo container: %v", err)
	}
}

func (s *UserStoreIntegrationTestSuite) SetupTest() {
	col := OpenCollection(s.client, "shopit_test", UsersCollection)
	s.Require().NoError(col.Drop(s.ctx))
	s.store = NewMongoUserStore(col, 5*time.Second)
	s.Require().NoError(s.store.EnsureIndexes(s.ctx))
}

func (s *UserStoreIntegrationTestSuite) newUser(email string) *models.User {
	u := &models.User{Name: "Ann", Email: email, PasswordHash: "$2a$10$hash"}
	s.Require().NoError(s.store.Create(s.ctx, u))
	return u
}

func (s *UserStoreIntegrationTestSuite) TestCreate_DuplicateEmail() {
	s.newUser("a@x.com")

	err := s.store.Create(s.ctx, &models.User{Name: "Other", Email: "a@x.com", PasswordHash: "h"})
	s.ErrorIs(err, ErrDuplicateEmail)

	users, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Len(users, 1)
}

func (s *UserStoreIntegrationTestSuite) TestReadsOmitPassword() {
	u := s.newUser("a@x.com")

	plain, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(plain.PasswordHash)
	s.Equal(models.RoleUser, plain.Role)

	withPw, err := s.store.FindByEmailWithPassword(s.ctx, "A@X.com")
	s.Require().NoError(err)
	s.Equal("$2a$10$hash", withPw.PasswordHash)
}

func (s *UserStoreIntegrationTestSuite) TestResetTokenLifecycle() {
	u := s.newUser("a@x.com")
	now := time.Now().UTC()

	s.Require().NoError(s.store.SetResetToken(s.ctx, u.ID, "hash1", now.Add(30*time.Minute)))

	found, err := s.store.FindByResetToken(s.ctx, "hash1", now)
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)

	_, err = s.store.FindByResetToken(s.ctx, "hash1", now.Add(time.Hour))
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.store.CompleteReset(s.ctx, u.ID, "other", now, "$2a$10$other")
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.store.CompleteReset(s.ctx, u.ID, "hash1", now, "$2a$10$new")
	s.Require().NoError(err)

	_, err = s.store.CompleteReset(s.ctx, u.ID, "hash1", now, "$2a$10$again")
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.store.FindByResetToken(s.ctx, "hash1", now)
	s.ErrorIs(err, ErrUserNotFound)

	after, err := s.store.FindByIDWithPassword(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal("$2a$10$new", after.PasswordHash)
	s.Empty(after.ResetPasswordToken)
	s.Nil(after.ResetPasswordExpire)
}

func (s *UserStoreIntegrationTestSuite) TestUpdateAndDelete() {
	u := s.newUser("a@x.com")
	s.newUser("b@x.com")

	name := "Bob"
	role := models.RoleAdmin
	updated, err := s.store.Update(s.ctx, u.ID, models.UserPatch{Name: &name, Role: &role})
	s.Require().NoError(err)
	s.Equal("Bob", updated.Name)
	s.Equal(models.RoleAdmin, updated.Role)

	taken := "b@x.com"
	_, err = s.store.Update(s.ctx, u.ID, models.UserPatch{Email: &taken})
	s.ErrorIs(err, ErrDuplicateEmail)

	s.Require().NoError(s.store.Delete(s.ctx, u.ID))
	s.ErrorIs(s.store.Delete(s.ctx, u.ID), ErrUserNotFound)
	_, err = s.store.FindByID(s.ctx, bson.NewObjectID())
	s.ErrorIs(err, ErrUserNotFound)
}

func TestUserStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UserStoreIntegrationTestSuite))
}
