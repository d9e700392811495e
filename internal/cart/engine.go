package cart

// AddItem folds a candidate line item into the cart. An item with the same
// identity key has its quantity incremented; otherwise the candidate is
// appended as-is. The total is recomputed before returning.
func (c *Cart) AddItem(item LineItem) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}
	if item.UnitPrice < 0 {
		return ErrInvalidPrice
	}

	if i := c.indexOf(item.Key()); i >= 0 {
		c.Items[i].Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}

	c.recomputeTotal()
	return nil
}

// SetItemQuantity replaces the matched item's quantity. A quantity of zero or
// less removes the item entirely.
func (c *Cart) SetItemQuantity(key ItemKey, quantity int) error {
	i := c.indexOf(key)
	if i < 0 {
		return ErrItemNotFound
	}

	if quantity > 0 {
		c.Items[i].Quantity = quantity
	} else {
		c.Items = append(c.Items[:i], c.Items[i+1:]...)
	}

	c.recomputeTotal()
	return nil
}

// RemoveItem removes the matched item unconditionally.
func (c *Cart) RemoveItem(key ItemKey) error {
	i := c.indexOf(key)
	if i < 0 {
		return ErrItemNotFound
	}

	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	c.recomputeTotal()
	return nil
}

// MergeFrom folds every item of the other cart into this one, summing
// quantities on identity-key overlap and appending the rest.
func (c *Cart) MergeFrom(other *Cart) error {
	for _, item := range other.Items {
		if err := c.AddItem(item); err != nil {
			return err
		}
	}
	return nil
}

func (c *Cart) indexOf(key ItemKey) int {
	for i, item := range c.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// totalPrice == sum(unit price * quantity), recomputed on every mutation and
// never taken from client input.
func (c *Cart) recomputeTotal() {
	var total float64
	for _, item := range c.Items {
		total += item.UnitPrice * float64(item.Quantity)
	}
	c.TotalPrice = total
}
