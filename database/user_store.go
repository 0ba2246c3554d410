package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/princinho/shopitbackend/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const UsersCollection = "users"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("duplicate email")
	ErrInvalidID      = errors.New("invalid id")
)

// UserStore is the credential store. Reads omit the password hash unless
// the method name says otherwise.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByIDWithPassword(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, id bson.ObjectID, patch models.UserPatch) (*models.User, error)
	SetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error
	SetResetToken(ctx context.Context, id bson.ObjectID, tokenHash string, expire time.Time) error
	ClearResetToken(ctx context.Context, id bson.ObjectID) error
	CompleteReset(ctx context.Context, id bson.ObjectID, tokenHash string, now time.Time, passwordHash string) (*models.User, error)
	SetAvatar(ctx context.Context, id bson.ObjectID, avatar models.Avatar) (*models.User, error)
	Delete(ctx context.Context, id bson.ObjectID) error
}

var withoutSecrets = bson.M{"password": 0}

type MongoUserStore struct {
	col     *mongo.Collection
	timeout time.Duration
	now     func() time.Time
}

func NewMongoUserStore(col *mongo.Collection, timeout time.Duration) *MongoUserStore {
	return &MongoUserStore{
		col:     col,
		timeout: timeout,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the unique email index and the reset token lookup index.
func (s *MongoUserStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "resetPasswordToken", Value: 1}},
			Options: options.Index().SetSparse(true).SetName("reset_token"),
		},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoUserStore) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.now()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := s.col.InsertOne(ctx, user); err != nil {
		if IsDuplicateKey(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *MongoUserStore) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, false)
}

func (s *MongoUserStore) FindByIDWithPassword(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id}, true)
}

func (s *MongoUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)}, false)
}

func (s *MongoUserStore) FindByEmailWithPassword(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)}, true)
}

// FindByResetToken matches the stored token hash and requires the expiry to
// be after now.
func (s *MongoUserStore) FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*models.User, error) {
	return s.findOne(ctx, bson.M{
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": bson.M{"$gt": now},
	}, false)
}

func (s *MongoUserStore) List(ctx context.Context) ([]models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.Find().
		SetProjection(withoutSecrets).
		SetSort(bson.D{{Key: "createdAt", Value: 1}})

	cursor, err := s.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (s *MongoUserStore) Update(ctx context.Context, id bson.ObjectID, patch models.UserPatch) (*models.User, error) {
	if patch.IsEmpty() {
		return s.FindByID(ctx, id)
	}
	set := patch.SetFields()
	set["updatedAt"] = s.now()
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set})
}

func (s *MongoUserStore) SetPassword(ctx context.Context, id bson.ObjectID, passwordHash string) error {
	return s.updateByID(ctx, id, bson.M{
		"$set": bson.M{"password": passwordHash, "updatedAt": s.now()},
	})
}

// SetResetToken writes the hash and expiry in one update so they are never
// observed apart.
func (s *MongoUserStore) SetResetToken(ctx context.Context, id bson.ObjectID, tokenHash string, expire time.Time) error {
	return s.updateByID(ctx, id, bson.M{
		"$set": bson.M{
			"resetPasswordToken":  tokenHash,
			"resetPasswordExpire": expire.UTC(),
			"updatedAt":           s.now(),
		},
	})
}

func (s *MongoUserStore) ClearResetToken(ctx context.Context, id bson.ObjectID) error {
	return s.updateByID(ctx, id, bson.M{
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
		"$set":   bson.M{"updatedAt": s.now()},
	})
}

// CompleteReset sets the new password and clears the reset fields together.
// The token must still be stored and unexpired at write time, so only one of
// several concurrent resets with the same token succeeds.
func (s *MongoUserStore) CompleteReset(ctx context.Context, id bson.ObjectID, tokenHash string, now time.Time, passwordHash string) (*models.User, error) {
	return s.findOneAndUpdate(ctx, bson.M{
		"_id":                 id,
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": bson.M{"$gt": now},
	}, bson.M{
		"$set":   bson.M{"password": passwordHash, "updatedAt": s.now()},
		"$unset": bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""},
	})
}

func (s *MongoUserStore) SetAvatar(ctx context.Context, id bson.ObjectID, avatar models.Avatar) (*models.User, error) {
	return s.findOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"avatar": avatar, "updatedAt": s.now()},
	})
}

func (s *MongoUserStore) Delete(ctx context.Context, id bson.ObjectID) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) findOne(ctx context.Context, filter bson.M, withPassword bool) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.FindOne()
	if !withPassword {
		opts.SetProjection(withoutSecrets)
	}

	var user models.User
	if err := s.col.FindOne(ctx, filter, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) findOneAndUpdate(ctx context.Context, filter, update bson.M) (*models.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(withoutSecrets)

	var user models.User
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		if IsDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &user, nil
}

func (s *MongoUserStore) updateByID(ctx context.Context, id bson.ObjectID, update bson.M) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	res, err := s.col.UpdateByID(ctx, id, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *MongoUserStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ParseObjectID converts a hex path parameter into an ObjectID.
func ParseObjectID(hex string) (bson.ObjectID, error) {
	id, err := bson.ObjectIDFromHex(strings.TrimSpace(hex))
	if err != nil {
		return bson.NilObjectID, ErrInvalidID
	}
	return id, nil
}

func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if mongo.IsDuplicateKeyError(err) {
		return true
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 || e.Code == 11001 {
				return true
			}
		}
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && (ce.Code == 11000 || ce.Code == 11001) {
		return true
	}

	return strings.Contains(err.Error(), "E11000 duplicate key error")
}
