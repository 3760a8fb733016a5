// Package storetest provides in-memory repositories that behave like the
// PostgreSQL ones, for handler and service tests.
package storetest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MikeMC777/quickcart/internal/cart"
	"github.com/MikeMC777/quickcart/internal/db"
	"github.com/MikeMC777/quickcart/internal/order"
	"github.com/MikeMC777/quickcart/internal/product"
	"github.com/MikeMC777/quickcart/internal/user"
	"github.com/MikeMC777/quickcart/internal/wishlist"
)

// Store is one shared state; the repositories it hands out are views on it.
// A single mutex plays the part of the database's user row lock.
type Store struct {
	mu     sync.Mutex
	nextID int64
	clock  time.Time

	users    map[int64]user.User
	products map[int64]product.Product
	cart     map[int64]cart.Item
	orders   map[int64]order.Order
	wishlist map[int64]wishlist.Item

	// CommitErr, when set, makes Commit fail after the order was built but
	// before anything is kept.
	CommitErr error
}

func New() *Store {
	return &Store{
		clock:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		users:    map[int64]user.User{},
		products: map[int64]product.Product{},
		cart:     map[int64]cart.Item{},
		orders:   map[int64]order.Order{},
		wishlist: map[int64]wishlist.Item{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

// AddUser creates a user with the given password and returns its id.
func (s *Store) AddUser(username, password string) int64 {
	hash, err := user.HashPassword(password)
	if err != nil {
		panic(err)
	}
	u := &user.User{Username: username, PasswordHash: hash}
	if err := s.Users().Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u.ID
}

// AddProduct creates a product; price is a decimal string such as "10.00".
func (s *Store) AddProduct(name, category, price string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := product.Product{ID: s.id(), Name: name, Price: decimal.RequireFromString(price)}
	if category != "" {
		p.Category = product.Category{ID: s.id(), Name: category}
	}
	s.products[p.ID] = p
	return p.ID
}

// SetPrice changes a product's price, as catalog management would.
func (s *Store) SetPrice(productID int64, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.products[productID]
	p.Price = decimal.RequireFromString(price)
	s.products[productID] = p
}

// CartRows returns the number of cart rows held by userID.
func (s *Store) CartRows(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.cart {
		if it.UserID == userID {
			n++
		}
	}
	return n
}

// OrderCount returns the number of orders held by userID.
func (s *Store) OrderCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, o := range s.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n
}

func (s *Store) Products() product.Repository { return productRepo{s} }
func (s *Store) Carts() cart.Repository { return cartRepo{s} }
func (s *Store) Orders() order.Repository { return orderRepo{s} }
func (s *Store) Wishlist() wishlist.Repository { return wishlistRepo{s} }
func (s *Store) Users() user.Repository { return userRepo{s} }

// ---------- catalog ----------

type productRepo struct{ s *Store }

func (r productRepo) List(_ context.Context, q product.Query) ([]product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []product.Product
	for _, p := range r.s.products {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r productRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

// ---------- cart ----------

type cartRepo struct{ s *Store }

func (r cartRepo) List(_ context.Context, userID int64) ([]cart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.cartOf(userID), nil
}

// cartOf must be called with the lock held.
func (s *Store) cartOf(userID int64) []cart.Item {
	var out []cart.Item
	for _, it := range s.cart {
		if it.UserID != userID {
			continue
		}
		p := s.products[it.ProductID]
		it.ProductName, it.UnitPrice, it.Image = p.Name, p.Price, p.Image
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r cartRepo) Increment(_ context.Context, userID, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return db.ErrUnknownUser
	}
	if _, ok := r.s.products[productID]; !ok {
		return fmt.Errorf("cart_items: product %d violates foreign key", productID)
	}
	for id, it := range r.s.cart {
		if it.UserID == userID && it.ProductID == productID {
			it.Quantity++
			r.s.cart[id] = it
			return nil
		}
	}
	id := r.s.id()
	r.s.cart[id] = cart.Item{ID: id, UserID: userID, ProductID: productID, Quantity: 1}
	return nil
}

func (r cartRepo) SetQuantity(_ context.Context, userID, itemID int64, qty int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if qty < 1 {
		return fmt.Errorf("cart_items: quantity %d violates check constraint", qty)
	}
	it, ok := r.s.cart[itemID]
	if !ok || it.UserID != userID {
		return cart.ErrNotFound
	}
	it.Quantity = qty
	r.s.cart[itemID] = it
	return nil
}

func (r cartRepo) Delete(_ context.Context, userID, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	it, ok := r.s.cart[itemID]
	if !ok || it.UserID != userID {
		return cart.ErrNotFound
	}
	delete(r.s.cart, itemID)
	return nil
}

// ---------- orders ----------

type orderRepo struct{ s *Store }

func (r orderRepo) Commit(_ context.Context, userID int64, rcpt order.Recipient) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[userID]; !ok {
		return nil, db.ErrUnknownUser
	}

	var lines []order.Line
	for _, it := range r.s.cartOf(userID) {
		lines = append(lines, order.Line{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	o, err := order.Snapshot(userID, rcpt, lines)
	if err != nil {
		return nil, err
	}
	if r.s.CommitErr != nil {
		return nil, r.s.CommitErr
	}

	o.ID = r.s.id()
	o.CreatedAt = r.s.tick()
	for i := range o.Items {
		o.Items[i].ID = r.s.id()
		o.Items[i].OrderID = o.ID
	}
	o.Bill = &order.Bill{ID: r.s.id(), OrderID: o.ID, CreatedAt: o.CreatedAt}
	r.s.orders[o.ID] = cloneOrder(*o)

	for id, it := range r.s.cart {
		if it.UserID == userID {
			delete(r.s.cart, id)
		}
	}
	return o, nil
}

func (r orderRepo) GetForUser(_ context.Context, orderID, userID int64) (*order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, order.ErrNotFound
	}
	c := cloneOrder(o)
	return &c, nil
}

func (r orderRepo) ListByUser(_ context.Context, userID int64) ([]order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []order.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			c := cloneOrder(o)
			c.Items = nil
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func cloneOrder(o order.Order) order.Order {
	o.Items = append([]order.Item(nil), o.Items...)
	if o.Bill != nil {
		b := *o.Bill
		o.Bill = &b
	}
	return o
}

// ---------- wishlist ----------

type wishlistRepo struct{ s *Store }

func (r wishlistRepo) Add(_ context.Context, userID, productID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.products[productID]; !ok {
		return wishlist.ErrNotFound
	}
	for _, it := range r.s.wishlist {
		if it.UserID == userID && it.ProductID == productID {
			return nil
		}
	}
	id := r.s.id()
	r.s.wishlist[id] = wishlist.Item{ID: id, UserID: userID, ProductID: productID}
	return nil
}

func (r wishlistRepo) Remove(_ context.Context, userID, itemID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if it, ok := r.s.wishlist[itemID]; ok && it.UserID == userID {
		delete(r.s.wishlist, itemID)
	}
	return nil
}

func (r wishlistRepo) List(_ context.Context, userID int64) ([]wishlist.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []wishlist.Item
	for _, it := range r.s.wishlist {
		if it.UserID != userID {
			continue
		}
		p := r.s.products[it.ProductID]
		it.ProductName, it.Price, it.Image = p.Name, p.Price, p.Image
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ---------- users ----------

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username {
			return user.ErrAlreadyExist
		}
	}
	u.ID = r.s.id()
	u.CreatedAt = r.s.tick()
	r.s.users[u.ID] = *u
	return nil
}

func (r userRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}

func (r userRepo) GetByUsername(_ context.Context, username string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, user.ErrNotFound
}
