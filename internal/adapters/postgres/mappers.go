package postgres

import (
	"github.com/mladenvic/promoaffiliate/internal/domain"
)

func toDomainProduct(m productModel) domain.Product {
	return domain.Product{
		ProductID:      m.ProductID,
		Title:          m.Title,
		Description:    m.Description,
		Price:          m.Price,
		Category:       m.Category,
		CommissionRate: m.CommissionRate,
		CommissionType: domain.CommissionType(m.CommissionType),
		ExternalURL:    m.ExternalURL,
		IsActive:       m.IsActive,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

func fromDomainProduct(p domain.Product) productModel {
	return productModel{
		ProductID:      p.ProductID,
		Title:          p.Title,
		Description:    p.Description,
		Price:          p.Price,
		Category:       p.Category,
		CommissionRate: p.CommissionRate,
		CommissionType: string(p.CommissionType),
		ExternalURL:    p.ExternalURL,
		IsActive:       p.IsActive,
		CreatedBy:      p.CreatedBy,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func toDomainReferralLink(m referralLinkModel) domain.ReferralLink {
	return domain.ReferralLink{
		LinkID:           m.LinkID,
		AffiliateID:      m.AffiliateID,
		ProductID:        m.ProductID,
		ReferralCode:     m.ReferralCode,
		CampaignName:     m.CampaignName,
		CustomParameters: map[string]string(m.CustomParameters),
		ClickCount:       m.ClickCount,
		ConversionCount:  m.ConversionCount,
		TotalEarnings:    m.TotalEarnings,
		IsActive:         m.IsActive,
		CreatedAt:        m.CreatedAt.UTC(),
		LastUsedAt:       m.LastUsedAt,
	}
}

func fromDomainReferralLink(l domain.ReferralLink) referralLinkModel {
	return referralLinkModel{
		LinkID:           l.LinkID,
		AffiliateID:      l.AffiliateID,
		ProductID:        l.ProductID,
		ReferralCode:     l.ReferralCode,
		CampaignName:     l.CampaignName,
		CustomParameters: jsonMap(l.CustomParameters),
		ClickCount:       l.ClickCount,
		ConversionCount:  l.ConversionCount,
		TotalEarnings:    l.TotalEarnings,
		IsActive:         l.IsActive,
		CreatedAt:        l.CreatedAt,
		LastUsedAt:       l.LastUsedAt,
	}
}

func toDomainReferral(m referralModel) domain.Referral {
	return domain.Referral{
		ReferralID:       m.ReferralID,
		AffiliateID:      m.AffiliateID,
		ProductID:        m.ProductID,
		ReferralLinkID:   m.ReferralLinkID,
		ReferralCode:     m.ReferralCode,
		CustomerID:       m.CustomerID,
		Status:           domain.ReferralStatus(m.Status),
		SessionID:        m.SessionID,
		IPHash:           m.IPHash,
		UserAgentHash:    m.UserAgentHash,
		ReferrerURL:      m.ReferrerURL,
		ClickedAt:        m.ClickedAt.UTC(),
		ConvertedAt:      m.ConvertedAt,
		OrderID:          m.OrderID,
		OrderValue:       m.OrderValue,
		CommissionAmount: m.CommissionAmount,
	}
}

func fromDomainReferral(r domain.Referral) referralModel {
	return referralModel{
		ReferralID:       r.ReferralID,
		AffiliateID:      r.AffiliateID,
		ProductID:        r.ProductID,
		ReferralLinkID:   r.ReferralLinkID,
		ReferralCode:     r.ReferralCode,
		CustomerID:       r.CustomerID,
		Status:           string(r.Status),
		SessionID:        r.SessionID,
		IPHash:           r.IPHash,
		UserAgentHash:    r.UserAgentHash,
		ReferrerURL:      r.ReferrerURL,
		ClickedAt:        r.ClickedAt,
		ConvertedAt:      r.ConvertedAt,
		OrderID:          r.OrderID,
		OrderValue:       r.OrderValue,
		CommissionAmount: r.CommissionAmount,
	}
}

func toDomainCommission(m commissionModel) domain.Commission {
	return domain.Commission{
		CommissionID:     m.CommissionID,
		AffiliateID:      m.AffiliateID,
		ReferralID:       m.ReferralID,
		ProductID:        m.ProductID,
		OrderID:          m.OrderID,
		OrderValue:       m.OrderValue,
		CommissionAmount: m.CommissionAmount,
		CommissionRate:   m.CommissionRate,
		CommissionType:   domain.CommissionType(m.CommissionType),
		Status:           domain.CommissionStatus(m.Status),
		CreatedAt:        m.CreatedAt.UTC(),
		ReviewedAt:       m.ReviewedAt,
		ReviewedBy:       m.ReviewedBy,
		ReviewNotes:      m.ReviewNotes,
	}
}

func fromDomainCommission(c domain.Commission) commissionModel {
	return commissionModel{
		CommissionID:     c.CommissionID,
		AffiliateID:      c.AffiliateID,
		ReferralID:       c.ReferralID,
		ProductID:        c.ProductID,
		OrderID:          c.OrderID,
		OrderValue:       c.OrderValue,
		CommissionAmount: c.CommissionAmount,
		CommissionRate:   c.CommissionRate,
		CommissionType:   string(c.CommissionType),
		Status:           string(c.Status),
		CreatedAt:        c.CreatedAt,
		ReviewedAt:       c.ReviewedAt,
		ReviewedBy:       c.ReviewedBy,
		ReviewNotes:      c.ReviewNotes,
	}
}

func toDomainAffiliate(m affiliateProfileModel) domain.AffiliateProfile {
	return domain.AffiliateProfile{
		UserID:           m.UserID,
		Email:            m.Email,
		BusinessName:     m.BusinessName,
		Website:          m.Website,
		CommissionRate:   m.CommissionRate,
		PayoutThreshold:  m.PayoutThreshold,
		TotalEarnings:    m.TotalEarnings,
		ApprovedEarnings: m.ApprovedEarnings,
		TotalReferrals:   m.TotalReferrals,
		TotalConversions: m.TotalConversions,
		IsActive:         m.IsActive,
		ApprovedAt:       m.ApprovedAt.UTC(),
		ApprovedBy:       m.ApprovedBy,
	}
}

func fromDomainAffiliate(p domain.AffiliateProfile) affiliateProfileModel {
	return affiliateProfileModel{
		UserID:           p.UserID,
		Email:            p.Email,
		BusinessName:     p.BusinessName,
		Website:          p.Website,
		CommissionRate:   p.CommissionRate,
		PayoutThreshold:  p.PayoutThreshold,
		TotalEarnings:    p.TotalEarnings,
		ApprovedEarnings: p.ApprovedEarnings,
		TotalReferrals:   p.TotalReferrals,
		TotalConversions: p.TotalConversions,
		IsActive:         p.IsActive,
		ApprovedAt:       p.ApprovedAt,
		ApprovedBy:       p.ApprovedBy,
	}
}

func toDomainApplication(m applicationModel) domain.AffiliateApplication {
	return domain.AffiliateApplication{
		ApplicationID:       m.ApplicationID,
		UserID:              m.UserID,
		Email:               m.Email,
		BusinessName:        m.BusinessName,
		Website:             m.Website,
		PromotionalChannels: []string(m.PromotionalChannels),
		AudienceSize:        m.AudienceSize,
		ReasonForApplying:   m.ReasonForApplying,
		Status:              domain.ApplicationStatus(m.Status),
		AppliedAt:           m.AppliedAt.UTC(),
		ReviewedAt:          m.ReviewedAt,
		ReviewedBy:          m.ReviewedBy,
		ReviewNotes:         m.ReviewNotes,
	}
}

func fromDomainApplication(a domain.AffiliateApplication) applicationModel {
	return applicationModel{
		ApplicationID:       a.ApplicationID,
		UserID:              a.UserID,
		Email:               a.Email,
		BusinessName:        a.BusinessName,
		Website:             a.Website,
		PromotionalChannels: jsonList(a.PromotionalChannels),
		AudienceSize:        a.AudienceSize,
		ReasonForApplying:   a.ReasonForApplying,
		Status:              string(a.Status),
		AppliedAt:           a.AppliedAt,
		ReviewedAt:          a.ReviewedAt,
		ReviewedBy:          a.ReviewedBy,
		ReviewNotes:         a.ReviewNotes,
	}
}
